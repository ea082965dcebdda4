// Package htmldom is an in-memory DOM implementing dom.Host on top of
// golang.org/x/net/html. It backs server-side rendering, the inspector and
// tests.
//
// Mutations of nodes connected to the document are reported to subscribers:
//
//	doc := htmldom.New()
//	stop := doc.Subscribe(func(m htmldom.Mutation) { log.Println(m.Kind, m.Target) })
//	defer stop()
//
// A Document is not safe for concurrent use; callers serialize access, for
// example through a sched.Loop.
package htmldom
