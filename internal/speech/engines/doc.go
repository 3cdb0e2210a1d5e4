// Package engines provides speech engine implementations.
package engines
