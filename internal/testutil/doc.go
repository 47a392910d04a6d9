// Package testutil provides test helpers shared across packages, most notably a
// small WebAssembly binary builder used to assemble guest modules in tests.
package testutil
