// Package demo builds the sample tree served by the carbyne CLI.
package demo

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/carbyne-dev/carbyne/pkg/atom"
	"github.com/carbyne-dev/carbyne/pkg/observable"
)

// MaxItems is the number of log lines the list keeps.
const MaxItems = 5

// App is the demo state and its tree.
type App struct {
	Root  *atom.Node
	Count *observable.Observable[int]
	Now   *observable.Observable[time.Time]
	Items *observable.Observable[[]string]
}

// New builds the demo tree showing start. The tree is not mounted.
func New(start time.Time, logger *slog.Logger) *App {
	a := &App{
		Count: observable.New(0),
		Now:   observable.New(start),
		Items: observable.New([]string{}),
	}

	parity := observable.Map(a.Count, func(n int) string {
		if n%2 == 0 {
			return "even"
		}
		return "odd"
	})
	badge := observable.Map(a.Count, func(n int) any {
		if n > 0 && n%10 == 0 {
			return atom.New("strong.milestone", nil, fmt.Sprintf("%d ticks!", n))
		}
		return nil
	})
	clock := observable.Map(a.Now, func(t time.Time) string {
		return t.UTC().Format("15:04:05")
	})

	a.Root = atom.New("main#demo", atom.Attrs{atom.DecoratorKey: &mountLogger{logger: logger}},
		atom.New("h1", nil, "carbyne"),
		atom.New("section.counter", atom.Attrs{"class": parity, "data-count": a.Count},
			atom.New("span.label", nil, "count: "),
			atom.New("span.value", nil, a.Count),
			badge,
		),
		atom.New("section.clock", nil, atom.New("time", nil, clock)),
		atom.New("ul.log", nil, atom.Repeat(a.Items, func(item *observable.PropObservable[string], i int) any {
			return atom.New("li", nil, item)
		})),
	)
	return a
}

// Tick advances the demo to now: the counter increments, the clock moves
// and a log line is added, keeping the last MaxItems. It must run on the
// loop driving the tree.
func (a *App) Tick(now time.Time) {
	n := observable.Inc(a.Count)
	a.Now.Set(now)
	observable.Push(a.Items, fmt.Sprintf("tick %d", n))
	for len(a.Items.Get()) > MaxItems {
		observable.Shift(a.Items)
	}
}

// mountLogger logs when the demo root is mounted and destroyed.
type mountLogger struct {
	atom.ControllerBase
	logger *slog.Logger
}

func (m *mountLogger) OnMount(*atom.Event) {
	if m.logger != nil {
		m.logger.Info("demo mounted")
	}
}

func (m *mountLogger) OnDestroy(*atom.Event) {
	if m.logger != nil {
		m.logger.Info("demo destroyed")
	}
}
