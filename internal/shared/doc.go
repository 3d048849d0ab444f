// Package shared holds helpers used by more than one package that belong to no
// pipeline stage. Test helpers live in the testutil subpackage.
package shared
