// Package storage resolves record ids into records.
//
// # Backends
//
//   - SQLite: reads one table per model through either github.com/mattn/go-sqlite3
//     (driver "sqlite3", cgo) or modernc.org/sqlite (driver "sqlite", pure Go)
//   - Memory: records registered in code, for tests and embedding
//
// # SQLite Backend
//
// Models map onto tables. Unless configured otherwise, model "party.party"
// reads table "party_party" with primary key "id". Every column becomes an
// attribute; relations add one-to-many collections:
//
//	resolver, err := storage.NewSQLiteResolver(storage.SQLiteConfig{
//	    Driver: storage.DriverModernc,
//	    Path:   "data/erp.db",
//	    Models: map[string]storage.Model{
//	        "account.invoice": {
//	            Relations: map[string]storage.Relation{
//	                "lines": {Model: "account.invoice.line", ForeignKey: "invoice"},
//	            },
//	        },
//	        "account.invoice.line": {},
//	    },
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer resolver.Close()
//
//	records, err := resolver.Resolve(ctx, "account.invoice", []string{"17"})
//
// # Errors
//
// Unknown ids produce a *RecordNotFoundError listing every missing id, and a
// model without a mapping produces an *UnknownModelError. Database failures
// are wrapped in *StorageError.
package storage
