package http_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	httpin "patternfactory/internal/adapters/in/http"
	"patternfactory/internal/adapters/out/memory"
	"patternfactory/internal/core/application/usecases/commands"
	"patternfactory/internal/core/application/usecases/queries"
	"patternfactory/internal/core/domain/model/kernel"
	"patternfactory/internal/core/domain/model/order"
	"patternfactory/internal/core/domain/model/order/ordertest"
	"patternfactory/internal/core/domain/services"
	"patternfactory/internal/pkg/metrics"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	echo  *echo.Echo
	store *memory.Store
}

func newTestServer(t *testing.T, clock kernel.Clock, orders ...*order.Order) testServer {
	t.Helper()
	store := memory.NewStore()
	for _, o := range orders {
		require.NoError(t, store.Repository().Add(t.Context(), o))
	}

	m := metrics.New()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	executor := commands.NewExecutor(memory.NewUnitOfWorkFactory(store), nil, m, logger)
	transitions := services.NewTransitionService(clock)
	claims := services.NewClaimCoordinator(clock)
	disputes := services.NewDisputeFlow(clock, transitions)
	reader := store.Repository()

	server := httpin.NewServer(httpin.Handlers{
		CreateOrder:      commands.NewCreateOrderCommandHandler(executor, clock),
		ApplyTrigger:     commands.NewApplyTriggerCommandHandler(executor, transitions, claims),
		ClaimOrder:       commands.NewClaimOrderCommandHandler(executor, claims),
		FileDispute:      commands.NewFileDisputeCommandHandler(executor, disputes),
		Reinspect:        commands.NewReinspectOrderCommandHandler(executor, disputes),
		GetOrder:         queries.NewGetOrderQueryHandler(reader, clock),
		GetOrderHistory:  queries.NewGetOrderHistoryQueryHandler(reader, clock),
		GetJobBoard:      queries.NewGetJobBoardQueryHandler(reader, services.NewJobBoard(), clock),
		GetOverdueOrders: queries.NewGetOverdueOrdersQueryHandler(reader, clock),
		GetSLATable:      queries.NewGetSLATableQueryHandler(),
	})

	e := echo.New()
	e.Use(httpin.MetricsMiddleware(m))
	httpin.RegisterOperational(e, m)
	server.RegisterHandlers(e)
	return testServer{echo: e, store: store}
}

func (s testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func clockAt(offset time.Duration) kernel.Clock {
	return kernel.FixedClock(ordertest.DefaultTime.Add(offset))
}

func TestServer_OrderToPatternReady(t *testing.T) {
	s := newTestServer(t, clockAt(0))

	rec := s.do(t, http.MethodPost, "/api/v1/orders",
		`{"order_id":"SDS-20260101-0001-A","customer_id":"cust_1","garment_type":"shirt","fit_type":"slim","priority":"normal"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "S01", decode[httpin.Order](t, rec).State)

	steps := []string{
		`{"trigger":"payment_received","payload":{"method":"card","amount":450000,"currency":"INR","reference":"pay_1"}}`,
		`{"trigger":"scan_received","payload":{"measurements":{
			"Cg":{"value":96,"confidence":0.95},"Wg":{"value":82,"confidence":0.93},
			"Hg":{"value":98,"confidence":0.91},"Sh":{"value":44,"confidence":0.90},
			"Al":{"value":61,"confidence":0.97},"Bw":{"value":38,"confidence":0.92},
			"Nc":{"value":39,"confidence":0.99}}}}`,
		`{"trigger":"processing_started"}`,
		`{"trigger":"pattern_ready"}`,
	}
	var last httpin.Order
	for _, body := range steps {
		rec = s.do(t, http.MethodPost, "/api/v1/orders/SDS-20260101-0001-A/transitions", body)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		last = decode[httpin.Order](t, rec)
	}

	assert.Equal(t, "S05", last.State)
	assert.Equal(t, "PATTERN_READY", last.StateName)
	assert.Equal(t, httpin.Files{PLT: true, PDS: true, DXF: true}, last.FilesAvailable)
	assert.Empty(t, last.MeasurementFlags)

	rec = s.do(t, http.MethodGet, "/api/v1/orders/SDS-20260101-0001-A/history", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]httpin.Transition](t, rec), 5)
}

func TestServer_CreateOrderErrors(t *testing.T) {
	s := newTestServer(t, clockAt(0), ordertest.New(order.Draft))

	rec := s.do(t, http.MethodPost, "/api/v1/orders",
		`{"order_id":"SDS-20260101-0001-A","customer_id":"cust_1","garment_type":"shirt","fit_type":"slim"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "already_exists", decode[httpin.Error](t, rec).ErrorKind)

	rec = s.do(t, http.MethodPost, "/api/v1/orders",
		`{"order_id":"ORD-1","customer_id":"cust_1","garment_type":"shirt","fit_type":"slim"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "invalid_value", decode[httpin.Error](t, rec).ErrorKind)

	rec = s.do(t, http.MethodPost, "/api/v1/orders", `{"order_id":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_IllegalTransition(t *testing.T) {
	s := newTestServer(t, clockAt(0), ordertest.New(order.Draft))

	rec := s.do(t, http.MethodPost, "/api/v1/orders/SDS-20260101-0001-A/transitions", `{"trigger":"shipped","payload":{"carrier":"BlueDart","tracking_number":"BD1"}}`)
	require.Equal(t, http.StatusConflict, rec.Code)

	body := decode[httpin.Error](t, rec)
	assert.Equal(t, "illegal_transition", body.ErrorKind)
	assert.Equal(t, "S01", body.CurrentState)
	assert.Equal(t, "shipped", body.AttemptedTrigger)
	assert.NotEmpty(t, body.Message)
}

func TestServer_InvalidPayload(t *testing.T) {
	s := newTestServer(t, clockAt(0), ordertest.New(order.Draft))

	rec := s.do(t, http.MethodPost, "/api/v1/orders/SDS-20260101-0001-A/transitions", `{"trigger":"payment_received","payload":{"method":"card","amount":0}}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "invalid_payload", decode[httpin.Error](t, rec).ErrorKind)

	rec = s.do(t, http.MethodPost, "/api/v1/orders/SDS-20260101-0001-A/transitions", `{"trigger":"teleported"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestServer_ClaimRace(t *testing.T) {
	s := newTestServer(t, clockAt(time.Minute), ordertest.New(order.AvailableForTailors))

	rec := s.do(t, http.MethodGet, "/api/v1/job-board", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]httpin.Order](t, rec), 1)

	rec = s.do(t, http.MethodPost, "/api/v1/orders/SDS-20260101-0001-A/claim", `{"tailor_id":"tailor_A"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "tailor_A", decode[httpin.Order](t, rec).AssignedTailorID)

	rec = s.do(t, http.MethodPost, "/api/v1/orders/SDS-20260101-0001-A/claim", `{"tailor_id":"tailor_B"}`)
	require.Equal(t, http.StatusConflict, rec.Code)
	body := decode[httpin.Error](t, rec)
	assert.Equal(t, "already_claimed", body.ErrorKind)
	assert.Equal(t, "S09", body.CurrentState)

	rec = s.do(t, http.MethodGet, "/api/v1/job-board", "")
	assert.Empty(t, decode[[]httpin.Order](t, rec))
}

func TestServer_DisputeFlow(t *testing.T) {
	s := newTestServer(t, clockAt(time.Hour), ordertest.New(order.QCInProgress))

	rec := s.do(t, http.MethodPost, "/api/v1/orders/SDS-20260101-0001-A/qc",
		`{"verdict":"FAIL","category":"CRITICAL_FAIL","inspector_id":"insp_1","fabric_cost":120000,"labor_fee":80000}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "S17", decode[httpin.Order](t, rec).State)

	rec = s.do(t, http.MethodGet, "/api/v1/orders/SDS-20260101-0001-A", "")
	require.Equal(t, http.StatusOK, rec.Code)
	status := decode[httpin.Order](t, rec)
	assert.Equal(t, "S17a", status.State)
	require.NotNil(t, status.Dispute)
	require.NotNil(t, status.Dispute.Deadline)

	rec = s.do(t, http.MethodPost, "/api/v1/orders/SDS-20260101-0001-A/dispute",
		`{"tailor_id":"`+ordertest.DefaultTailor+`","reason":"seam allowance matches pattern"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "S17b", decode[httpin.Order](t, rec).State)

	rec = s.do(t, http.MethodPost, "/api/v1/orders/SDS-20260101-0001-A/reinspect",
		`{"verdict":"CONFIRM_FAIL","inspector_id":"insp_2"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	final := decode[httpin.Order](t, rec)
	assert.Equal(t, "S17d", final.State)
	assert.True(t, final.IsTerminal)
	assert.False(t, final.PayoutEligible)
	require.NotNil(t, final.Payout)
	assert.Equal(t, "WITHHELD", final.Payout.Status)
}

func TestServer_DisputeWindowExpired(t *testing.T) {
	s := newTestServer(t, clockAt(order.DisputeWindow+time.Minute), ordertest.New(order.QCFailPendingDispute))

	rec := s.do(t, http.MethodPost, "/api/v1/orders/SDS-20260101-0001-A/dispute",
		`{"tailor_id":"`+ordertest.DefaultTailor+`","reason":"late"}`)
	require.Equal(t, http.StatusConflict, rec.Code)
	body := decode[httpin.Error](t, rec)
	assert.Equal(t, "dispute_window_expired", body.ErrorKind)
	assert.Equal(t, "S17d", body.CurrentState)

	stored, err := s.store.Repository().Get(t.Context(), kernel.MustParseOrderID(ordertest.DefaultOrderID))
	require.NoError(t, err)
	assert.Equal(t, order.TotalFail, stored.State())
}

func TestServer_ReadEndpoints(t *testing.T) {
	s := newTestServer(t, clockAt(20*time.Minute), ordertest.New(order.Claimed))

	rec := s.do(t, http.MethodGet, "/api/v1/orders/SDS-20260101-9999-A", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decode[httpin.Error](t, rec).ErrorKind)

	rec = s.do(t, http.MethodGet, "/api/v1/orders/overdue", "")
	require.Equal(t, http.StatusOK, rec.Code)
	overdue := decode[[]httpin.Order](t, rec)
	require.Len(t, overdue, 1)
	require.NotNil(t, overdue[0].SLA)
	assert.True(t, overdue[0].SLA.Overdue)

	rec = s.do(t, http.MethodGet, "/api/v1/config/sla", "")
	require.Equal(t, http.StatusOK, rec.Code)
	table := decode[map[string]httpin.SLAEntry](t, rec)
	assert.Equal(t, 5.0, table["S04"].MaxMinutes)
	assert.Equal(t, 24.0, table["S17a"].MaxHours)

	rec = s.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "patternfactory_http_requests_total")
}

func TestServer_PayloadFieldNames(t *testing.T) {
	t.Run("qc verdict_category", func(t *testing.T) {
		s := newTestServer(t, clockAt(time.Hour), ordertest.New(order.QCInProgress))

		rec := s.do(t, http.MethodPost, "/api/v1/orders/SDS-20260101-0001-A/qc",
			`{"verdict":"FAIL","verdict_category":"CRITICAL_FAIL","inspector_id":"qc_001"}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		got := decode[httpin.Order](t, rec)
		assert.Equal(t, "S17", got.State)
		require.NotNil(t, got.QC)
		assert.Equal(t, "CRITICAL_FAIL", got.QC.Category)
	})

	t.Run("payment_method without currency", func(t *testing.T) {
		s := newTestServer(t, clockAt(0), ordertest.New(order.Draft))

		rec := s.do(t, http.MethodPost, "/api/v1/orders/SDS-20260101-0001-A/transitions",
			`{"trigger":"payment_received","payload":{"payment_method":"stripe","amount":50000}}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, "S02", decode[httpin.Order](t, rec).State)
	})
}

func TestServer_VerdictPayloadErrors(t *testing.T) {
	s := newTestServer(t, clockAt(time.Hour), ordertest.New(order.QCInProgress), ordertest.New(order.DisputedAwaitingReinspection, ordertest.WithID("SDS-20260101-0002-A")))

	tests := []struct {
		name    string
		path    string
		body    string
		trigger string
	}{
		{"qc without inspector", "/api/v1/orders/SDS-20260101-0001-A/qc", `{"verdict":"PASS"}`, "qc_passed"},
		{"qc unknown verdict", "/api/v1/orders/SDS-20260101-0001-A/qc", `{"verdict":"MAYBE","inspector_id":"qc_001"}`, ""},
		{"fail without category", "/api/v1/orders/SDS-20260101-0001-A/qc", `{"verdict":"FAIL","inspector_id":"qc_001"}`, "qc_failed"},
		{"reinspect without inspector", "/api/v1/orders/SDS-20260101-0002-A/reinspect", `{"verdict":"PASS"}`, "reinspection_passed"},
		{"reinspect unknown verdict", "/api/v1/orders/SDS-20260101-0002-A/reinspect", `{"verdict":"MAYBE","inspector_id":"qc_002"}`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, http.MethodPost, tt.path, tt.body)
			require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
			body := decode[httpin.Error](t, rec)
			assert.Equal(t, "invalid_payload", body.ErrorKind)
			assert.Equal(t, tt.trigger, body.AttemptedTrigger)
		})
	}
}

func TestServer_Reassignment(t *testing.T) {
	s := newTestServer(t, clockAt(time.Hour), ordertest.New(order.QCInProgress), ordertest.New(order.Claimed, ordertest.WithID("SDS-20260101-0002-A")))

	rec := s.do(t, http.MethodPost, "/api/v1/orders/SDS-20260101-0001-A/qc/reassign",
		`{"from_inspector":"`+ordertest.DefaultInspector+`","to_inspector":"qc_002","reason":"shift change"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decode[httpin.Order](t, rec)
	assert.Equal(t, "S15", got.State)
	assert.Equal(t, "qc_002", got.AssignedInspectorID)

	rec = s.do(t, http.MethodGet, "/api/v1/orders/SDS-20260101-0001-A", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "qc_002", decode[httpin.Order](t, rec).AssignedInspectorID)

	rec = s.do(t, http.MethodGet, "/api/v1/orders/SDS-20260101-0001-A/history", "")
	require.Equal(t, http.StatusOK, rec.Code)
	history := decode[[]httpin.Transition](t, rec)
	require.NotEmpty(t, history)
	last := history[len(history)-1]
	assert.Equal(t, "inspector_reassigned", last.Trigger)
	assert.Equal(t, "S15", last.From)
	assert.Equal(t, "S15", last.To)

	t.Run("previous inspector mismatch", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/api/v1/orders/SDS-20260101-0001-A/qc/reassign",
			`{"from_inspector":"qc_999","to_inspector":"qc_003"}`)
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
		assert.Equal(t, "invalid_payload", decode[httpin.Error](t, rec).ErrorKind)
	})

	t.Run("missing target", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/api/v1/orders/SDS-20260101-0001-A/qc/reassign", `{"reason":"shift change"}`)
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
		assert.Equal(t, "invalid_payload", decode[httpin.Error](t, rec).ErrorKind)
	})

	t.Run("tailor", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/api/v1/orders/SDS-20260101-0002-A/tailor/reassign",
			`{"to_tailor":"tailor_B","reason":"tailor unavailable"}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		got := decode[httpin.Order](t, rec)
		assert.Equal(t, "S09", got.State)
		assert.Equal(t, "tailor_B", got.AssignedTailorID)
	})

	t.Run("inspector outside an inspection", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/api/v1/orders/SDS-20260101-0002-A/qc/reassign", `{"to_inspector":"qc_003"}`)
		require.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())
		body := decode[httpin.Error](t, rec)
		assert.Equal(t, "illegal_transition", body.ErrorKind)
		assert.Equal(t, "S09", body.CurrentState)
	})
}
