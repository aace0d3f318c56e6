// Package validation runs a fixed suite of structural checks against a
// produced container.
//
// Every check runs against one shared read-only handle, is reported on its
// own, and never stops the suite. Checks marked ExpectedFailure document
// properties the current product is known not to hold; they are reported
// but excluded from the suite verdict.
package validation
