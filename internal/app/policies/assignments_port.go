package policies

import (
	"context"

	"tourbook/internal/domain/assignment"
	"tourbook/internal/domain/catalog"
)

// Assignments only knows single-edge writes; there is no batch replace.
type Assignments interface {
	assignment.Writer
	Current(ctx context.Context, scope assignment.Scope) ([]assignment.Key, error)
	// ForPackage lists the edges of one package with their primary flags.
	ForPackage(ctx context.Context, id catalog.PackageID) ([]assignment.Assignment, error)
}
