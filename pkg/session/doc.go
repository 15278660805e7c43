// Package session implements cookie-identified, store-backed server sessions.
//
// A session is split in two: an opaque token that travels in a signed cookie
// and a record that lives only in the store. The Manager resolves the token
// on the way in, hands the record to the handler through the request context,
// and persists it on the way out. Records track their own dirty flag so
// untouched requests cost a single TTL touch instead of a full write.
//
// Stores are pluggable: MemoryStore for tests and development, PostgresStore
// and RedisStore for durable deployments.
//
//	store := session.NewPostgresStore(pool)
//	mgr := session.New(
//		session.NewCookieTransport(cookieMgr, cfg.CookieName, cfg.SecureCookies),
//		session.WithStore(store),
//		session.WithConfig(cfg),
//		session.WithLogger(log),
//	)
//	handler := mgr.Middleware(mux)
//
// Concurrent requests against the same session may race on load/save; the
// last writer wins. This is a deliberate, documented trade-off — the
// application has no cross-tab coordination requirement.
package session
