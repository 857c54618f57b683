package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/gestion-escolar/internal/application/contract"
	"github.com/jhoicas/gestion-escolar/internal/application/dto"
	"github.com/jhoicas/gestion-escolar/internal/application/inventory"
	"github.com/jhoicas/gestion-escolar/internal/application/school"
	"github.com/jhoicas/gestion-escolar/internal/domain/entity"
	"github.com/jhoicas/gestion-escolar/internal/infrastructure/memory"
	"github.com/jhoicas/gestion-escolar/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/gestion-escolar/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/gestion-escolar/pkg/jwt"
)

// buildAPI arma el router completo sobre el store en memoria con A y B en el grupo g1 y C en g2.
func buildAPI(t *testing.T) *fiber.App {
	t.Helper()
	store := memory.New()
	ctx := context.Background()
	for id, group := range map[string]string{testSchoolA: "g1", testSchoolB: "g1", testSchoolC: "g2"} {
		require.NoError(t, store.Save(ctx, &entity.School{ID: id, Name: id, PurchasingGroupID: group}))
	}
	cache, err := inventory.NewSnapshotCache(32)
	require.NoError(t, err)
	balances := contract.NewBalanceLedger(store, store.Consumptions(), store, nil)
	transfers := contract.NewTransferCoordinator(balances, store.Transfers(), store, 10, nil)

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		Stock:     inventory.NewStockLedger(store.Receipts(), store, cache, nil),
		Balances:  balances,
		Transfers: transfers,
		Schools:   school.NewDirectory(store),
		Reports:   contract.NewTransferReporter(transfers, store, pdf.NewMarotoReportGenerator()),
		JWTSecret: testJWTSecret,
		JWTIssuer: testIssuer,
	})
	return app
}

func call(t *testing.T, app *fiber.App, method, path, schoolID string, body any) (*http.Response, []byte) {
	t.Helper()
	return callWith(t, app, method, path, bearer(t, schoolID), body)
}

func callWith(t *testing.T, app *fiber.App, method, path, authHeader string, body any) (*http.Response, []byte) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", authHeader)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	var out bytes.Buffer
	_, _ = out.ReadFrom(resp.Body)
	return resp, out.Bytes()
}

func stockPath(desc, unit string) string {
	q := url.Values{"description": {desc}, "unit_measure": {unit}}
	return "/api/inventory/stock?" + q.Encode()
}

// contractBody arma un contrato de un ítem con vigencia alrededor de hoy.
func contractBody(desc, unit, price, qty string) map[string]any {
	now := time.Now().UTC()
	return map[string]any{
		"supplier_name": "Distribuidora Andina", "number": "CT-1",
		"valid_from": now.AddDate(0, -1, 0).Format(time.RFC3339), "valid_until": now.AddDate(0, 11, 0).Format(time.RFC3339),
		"items": []map[string]any{{"description": desc, "unit_measure": unit, "unit_price": price, "contracted_quantity": qty}},
	}
}

func createItem(t *testing.T, app *fiber.App, schoolID string, body map[string]any) string {
	t.Helper()
	resp, raw := call(t, app, http.MethodPost, "/api/contracts", schoolID, body)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	var created dto.ContractResponse
	require.NoError(t, json.Unmarshal(raw, &created))
	return created.Items[0].ID
}

// Caso 1: factura aprobada, salida de 30 y salida de 80 rechazada con available.
func TestAPI_InventarioEscenarioArroz(t *testing.T) {
	app := buildAPI(t)

	resp, _ := call(t, app, http.MethodPost, "/api/inventory/invoices", testSchoolA, map[string]any{
		"supplier_name": "Molinos", "number": "F-1", "issued_at": "2024-03-01T00:00:00Z",
		"status": "APPROVED", "active": true,
		"items": []map[string]any{{"description": "Rice 5kg", "unit_measure": "unidad", "quantity": "100", "unit_price": "10.00"}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, raw := call(t, app, http.MethodPost, "/api/inventory/movements", testSchoolA, map[string]any{
		"description": "rice 5KG", "unit_measure": "Unidad", "type": "EXIT", "quantity": "30", "destination": "comedor",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	var mov dto.MovementResponse
	require.NoError(t, json.Unmarshal(raw, &mov))
	assert.Equal(t, "300", mov.TotalCost.String())

	resp, raw = call(t, app, http.MethodPost, "/api/inventory/validate-exit", testSchoolA, map[string]any{
		"description": "Rice 5kg", "unit_measure": "unidad", "quantity": "80",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	var errBody dto.ErrorResponse
	require.NoError(t, json.Unmarshal(raw, &errBody))
	assert.Equal(t, "INSUFFICIENT_STOCK", errBody.Code)
	assert.Equal(t, "70", errBody.Available)

	resp, raw = call(t, app, http.MethodGet, stockPath("Rice 5kg", "unidad"), testSchoolA, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var snap dto.StockSnapshotResponse
	require.NoError(t, json.Unmarshal(raw, &snap))
	assert.Equal(t, "70", snap.Quantity.String())
	assert.Equal(t, "10", snap.AverageCost.String())
	assert.Equal(t, "700", snap.TotalValue.String())
}

// Caso 2: producto sin descripción → 400 VALIDATION.
func TestAPI_StockSinProducto(t *testing.T) {
	resp, raw := call(t, buildAPI(t), http.MethodGet, "/api/inventory/stock", testSchoolA, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(raw), "VALIDATION")
}

// Caso 3: contrato de 500, traslado de 200, traslado de 400 rechazado, destino fuera del grupo.
func TestAPI_ContratoYTraslados(t *testing.T) {
	app := buildAPI(t)

	itemPath := "/api/contracts/items/" + createItem(t, app, testSchoolA, contractBody("Arroz", "kg", "2.5", "500"))
	justification := "excedente por cierre del comedor escolar"

	resp, raw := call(t, app, http.MethodPost, itemPath+"/transfers", testSchoolA, map[string]any{
		"to_school_id": testSchoolB, "quantity": "200", "justification": justification,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))

	resp, raw = call(t, app, http.MethodPost, itemPath+"/transfers", testSchoolA, map[string]any{
		"to_school_id": testSchoolB, "quantity": "400", "justification": justification,
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	var errBody dto.ErrorResponse
	require.NoError(t, json.Unmarshal(raw, &errBody))
	assert.Equal(t, "OVERCONSUMPTION", errBody.Code)
	assert.Equal(t, "300", errBody.Available)

	resp, raw = call(t, app, http.MethodPost, itemPath+"/transfers", testSchoolA, map[string]any{
		"to_school_id": testSchoolC, "quantity": "1", "justification": justification,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, string(raw), "INELIGIBLE_DESTINATION")

	resp, raw = call(t, app, http.MethodGet, itemPath, testSchoolA, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var item dto.ContractItemResponse
	require.NoError(t, json.Unmarshal(raw, &item))
	assert.Equal(t, "300", item.AvailableBalance.String())
	assert.Equal(t, "200", item.Consumed.String())
	assert.Equal(t, "750", item.AvailableValue.String())
	assert.Equal(t, entity.ItemStatePartiallyConsumed, item.State)

	resp, _ = call(t, app, http.MethodDelete, itemPath, testSchoolA, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode, "un ítem con consumos no se elimina")

	resp, raw = call(t, app, http.MethodGet, "/api/schools/"+testSchoolB+"/transfers", testSchoolB, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var history []dto.TransferResponse
	require.NoError(t, json.Unmarshal(raw, &history))
	require.Len(t, history, 1, "el destino ve el traslado recibido")
	assert.Equal(t, testUserID, history[0].Actor)
}

// Caso 4: otra escuela no puede operar el ítem.
func TestAPI_ItemAjeno(t *testing.T) {
	app := buildAPI(t)
	itemID := createItem(t, app, testSchoolA, contractBody("Sal", "kg", "1", "10"))

	resp, _ := call(t, app, http.MethodPost, "/api/contracts/items/"+itemID+"/consume", testSchoolB, map[string]any{"quantity": "1", "reason": "almuerzo"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = call(t, app, http.MethodGet, "/api/contracts/items/"+itemID+"/consumptions", testSchoolB, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = call(t, app, http.MethodGet, "/api/contracts/items/no-existe", testSchoolA, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// Caso 5: destinos elegibles y alta de escuelas.
func TestAPI_Escuelas(t *testing.T) {
	app := buildAPI(t)

	resp, raw := call(t, app, http.MethodGet, "/api/schools/"+testSchoolA+"/eligible-destinations", testSchoolA, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string][]string
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, []string{testSchoolB}, body["destinations"])

	resp, _ = call(t, app, http.MethodPut, "/api/schools/esc-d", "esc-d", map[string]any{"name": "Escuela D", "purchasing_group_id": "g1"})
	require.Equal(t, http.StatusOK, resp.StatusCode, "una escuela registra sus propios datos")

	resp, raw = call(t, app, http.MethodGet, "/api/schools/"+testSchoolA+"/eligible-destinations", testSchoolA, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, []string{testSchoolB, "esc-d"}, body["destinations"])

	resp, _ = call(t, app, http.MethodGet, "/api/schools/"+testSchoolB+"/eligible-destinations", testSchoolA, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

// Caso 6: reporte PDF de traslados, solo para la propia escuela.
func TestAPI_ReporteTraslados(t *testing.T) {
	app := buildAPI(t)

	resp, raw := call(t, app, http.MethodGet, "/api/schools/"+testSchoolA+"/transfers/report", testSchoolA, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(raw, []byte("%PDF")))

	resp, _ = call(t, app, http.MethodGet, "/api/schools/"+testSchoolA+"/transfers/report", testSchoolB, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

// Caso 7: una escuela no puede mover a otra de grupo de compras; un admin sí.
func TestAPI_DirectorioSoloPropioOAdmin(t *testing.T) {
	app := buildAPI(t)

	resp, _ := call(t, app, http.MethodPut, "/api/schools/"+testSchoolC, testSchoolA, map[string]any{"name": "C", "purchasing_group_id": "g1"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, raw := call(t, app, http.MethodGet, "/api/schools/"+testSchoolA+"/eligible-destinations", testSchoolA, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string][]string
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, []string{testSchoolB}, body["destinations"], "C sigue fuera del grupo")

	admin := bearerAs(t, "", pkgjwt.RoleAdmin, testIssuer)
	resp, _ = callWith(t, app, http.MethodPut, "/api/schools/"+testSchoolC, admin, map[string]any{"name": "C", "purchasing_group_id": "g1"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, raw = call(t, app, http.MethodGet, "/api/schools/"+testSchoolA+"/eligible-destinations", testSchoolA, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, []string{testSchoolB, testSchoolC}, body["destinations"])
}

// Caso 8: el stock de una escuela no es visible ni consumible desde otra.
func TestAPI_StockPorEscuela(t *testing.T) {
	app := buildAPI(t)

	resp, raw := call(t, app, http.MethodPost, "/api/inventory/movements", testSchoolB, map[string]any{
		"description": "Aceite", "unit_measure": "lt", "type": "ENTRY", "quantity": "10", "unit_cost": "4",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))

	resp, raw = call(t, app, http.MethodGet, stockPath("Aceite", "lt"), testSchoolA, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var snap dto.StockSnapshotResponse
	require.NoError(t, json.Unmarshal(raw, &snap))
	assert.True(t, snap.Quantity.IsZero(), "esc-a no ve el stock de esc-b")

	resp, raw = call(t, app, http.MethodPost, "/api/inventory/movements", testSchoolA, map[string]any{
		"description": "Aceite", "unit_measure": "lt", "type": "EXIT", "quantity": "10",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, string(raw), "INSUFFICIENT_STOCK")

	resp, raw = call(t, app, http.MethodGet, stockPath("Aceite", "lt"), testSchoolB, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(raw, &snap))
	assert.Equal(t, "10", snap.Quantity.String())
}

// Caso 9: consumo directo con historial, precisión máxima y contrato vencido.
func TestAPI_ConsumoConHistorial(t *testing.T) {
	app := buildAPI(t)
	itemPath := "/api/contracts/items/" + createItem(t, app, testSchoolA, contractBody("Leche", "lt", "1.2", "100"))

	resp, raw := call(t, app, http.MethodPost, itemPath+"/consume", testSchoolA, map[string]any{"quantity": "40", "reason": "desayuno escolar"})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	var consumed dto.ConsumeResponse
	require.NoError(t, json.Unmarshal(raw, &consumed))
	assert.Equal(t, "60", consumed.Item.AvailableBalance.String())
	assert.Equal(t, testUserID, consumed.Consumption.Actor)

	resp, _ = call(t, app, http.MethodPost, itemPath+"/consume", testSchoolA, map[string]any{"quantity": "1"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "el motivo es obligatorio")

	resp, raw = call(t, app, http.MethodPost, itemPath+"/consume", testSchoolA, map[string]any{"quantity": "0.0000001", "reason": "desayuno"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(raw), "INVALID_QUANTITY")

	resp, raw = call(t, app, http.MethodGet, itemPath+"/consumptions", testSchoolA, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var history []dto.ConsumptionResponse
	require.NoError(t, json.Unmarshal(raw, &history))
	require.Len(t, history, 1)
	assert.Equal(t, "desayuno escolar", history[0].Reason)
	assert.Equal(t, "40", history[0].Quantity.String())

	expired := contractBody("Pan", "unidad", "0.5", "10")
	expired["valid_from"] = "2020-01-01T00:00:00Z"
	expired["valid_until"] = "2020-12-31T00:00:00Z"
	oldPath := "/api/contracts/items/" + createItem(t, app, testSchoolA, expired)
	resp, raw = call(t, app, http.MethodPost, oldPath+"/consume", testSchoolA, map[string]any{"quantity": "1", "reason": "desayuno"})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, string(raw), "CONTRACT_NOT_IN_FORCE")
}
