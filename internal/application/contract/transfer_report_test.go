package contract_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/gestion-escolar/internal/application/contract"
	"github.com/jhoicas/gestion-escolar/internal/domain"
)

// captureGenerator guarda el último reporte recibido.
type captureGenerator struct{ got *contract.TransferReport }

func (g *captureGenerator) GenerateTransferReport(_ context.Context, r *contract.TransferReport) ([]byte, error) {
	g.got = r
	return []byte("%PDF-fake"), nil
}

func TestTransferReporter(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.transfer("200", schoolB)
	require.NoError(t, err)
	_, err = f.transfer("50", schoolB)
	require.NoError(t, err)

	gen := &captureGenerator{}
	reporter := contract.NewTransferReporter(f.coord, f.store, gen)
	ctx := context.Background()

	// Caso 1: el origen ve dos envíos con el producto resuelto
	out, err := reporter.Render(ctx, schoolA)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-fake", string(out))
	require.Len(t, gen.got.Lines, 2)
	assert.Equal(t, 2, gen.got.SentCount)
	assert.Equal(t, 0, gen.got.ReceivedCount)
	assert.Equal(t, "Arroz", gen.got.Lines[0].Description)
	assert.Equal(t, "kg", gen.got.Lines[0].UnitMeasure)
	assert.True(t, gen.got.Lines[0].Outgoing)
	assert.True(t, gen.got.Lines[0].Record.Sequence < gen.got.Lines[1].Record.Sequence, "orden de registro")

	// Caso 2: el destino los ve como recibidos
	rep, err := reporter.Build(ctx, schoolB)
	require.NoError(t, err)
	assert.Equal(t, 2, rep.ReceivedCount)
	assert.False(t, rep.Lines[0].Outgoing)

	// Caso 3: escuela sin traslados
	rep, err = reporter.Build(ctx, schoolC)
	require.NoError(t, err)
	assert.Empty(t, rep.Lines)

	// Caso 4: escuela inexistente
	_, err = reporter.Build(ctx, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
