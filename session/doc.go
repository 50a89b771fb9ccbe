// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package session keeps the reviewer's name and email across requests.

The cookie carries only a signed random id; the identity lives server side
in a Store (SQLStore for sqlite/postgres, MemoryStore otherwise). Identity
is trusted as given: there is no login.

	m := session.NewManager(session.NewMemoryStore(), session.Options{Secret: secret})
	who, ok := m.Load(r)
	err := m.Save(w, r, models.Identity{Name: "Ann", Email: "ann@example.com"})
*/
package session
