// Package interfaces documents the core abstractions used throughout the application.
//
// # Interface Categories
//
// ## Remote API Interfaces
//
//   - Source: Collection listing and item metadata for the exporter (internal/exporter/source.go)
//   - FileSource: File downloads for the importer (internal/importer/downloader.go)
//   - HTTPDoer: Transport of the CONTENTdm client, pester by default (internal/contentdm/client.go)
//
// ## Progress Tracking Interfaces
//
//   - ProgressReporter: Run progress reporting (internal/services/interfaces.go)
//
// # Compound Object Traversal
//
// Compound structures are walked with compound.Walk, a pre-order traversal
// over pages at any depth:
//
//	err := compound.Walk(structure.Nodes, func(page *compound.Page) error {
//	    if page.IsPDFPage() {
//	        return nil
//	    }
//	    // handle page.Pointer, page.File
//	    return nil
//	})
//
// Returning compound.ErrStop ends the walk early without an error.
//
// # Adding a New Pipeline Step
//
// To add a step that needs the remote API (e.g. thumbnails):
//
//  1. Declare the narrow interface it needs in its own package
//
//     type ThumbnailSource interface {
//         GetFile(ctx context.Context, alias, key, filename string) (io.ReadCloser, error)
//     }
//
//  2. Add a compile-time check for contentdm.Client in checks.go
//
//     var _ thumbnails.ThumbnailSource = (*contentdm.Client)(nil)
//
//  3. Test against a fake implementation or an httptest server
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces. This catches missing methods at compile time rather than runtime:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// This pattern is used throughout the codebase. See checks.go for examples.
package interfaces
