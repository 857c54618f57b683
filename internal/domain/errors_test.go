package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/gestion-escolar/internal/domain"
)

func TestAvailableOf(t *testing.T) {
	stock := &domain.InsufficientStockError{Product: "arroz (kg)", Requested: decimal.NewFromInt(80), Available: decimal.NewFromInt(70)}
	wrapped := fmt.Errorf("registrar salida: %w", stock)

	got, ok := domain.AvailableOf(wrapped)
	assert.True(t, ok)
	assert.True(t, got.Equal(decimal.NewFromInt(70)))
	assert.ErrorIs(t, wrapped, domain.ErrInsufficientStock)

	over := &domain.OverconsumptionError{ContractItemID: "i1", Requested: decimal.NewFromInt(400), Available: decimal.NewFromInt(300)}
	got, ok = domain.AvailableOf(over)
	assert.True(t, ok)
	assert.True(t, got.Equal(decimal.NewFromInt(300)))

	_, ok = domain.AvailableOf(domain.ErrNotFound)
	assert.False(t, ok)
}

func TestPersistenceError_DesenvuelveAmbos(t *testing.T) {
	cause := errors.New("disco lleno")
	err := &domain.PersistenceError{Op: "registrar traslado", Err: cause}
	assert.ErrorIs(t, err, domain.ErrPersistence)
	assert.ErrorIs(t, err, cause)
	assert.False(t, domain.IsRejection(err), "una falla de persistencia no es un rechazo de negocio")
}

func TestIsRejection(t *testing.T) {
	assert.True(t, domain.IsRejection(domain.ErrIneligibleDestination))
	assert.True(t, domain.IsRejection(&domain.OverconsumptionError{}))
	assert.True(t, domain.IsRejection(domain.ErrContractNotInForce))
	assert.False(t, domain.IsRejection(domain.ErrConflict))
}
