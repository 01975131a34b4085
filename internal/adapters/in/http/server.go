package http

import (
	"net/http"
	"strconv"

	"patternfactory/internal/core/application/usecases/commands"
	"patternfactory/internal/core/application/usecases/queries"
	"patternfactory/internal/core/domain/model/order"

	"github.com/labstack/echo/v4"
)

// Server exposes the order lifecycle over HTTP.
// It coordinates between HTTP handlers and application use cases.
type Server struct {
	// Command handlers
	createOrderHandler  commands.CreateOrderCommandHandler
	applyTriggerHandler commands.ApplyTriggerCommandHandler
	claimOrderHandler   commands.ClaimOrderCommandHandler
	fileDisputeHandler  commands.FileDisputeCommandHandler
	reinspectHandler    commands.ReinspectOrderCommandHandler

	// Query handlers
	getOrderHandler         queries.GetOrderQueryHandler
	getOrderHistoryHandler  queries.GetOrderHistoryQueryHandler
	getJobBoardHandler      queries.GetJobBoardQueryHandler
	getOverdueOrdersHandler queries.GetOverdueOrdersQueryHandler
	getSLATableHandler      queries.GetSLATableQueryHandler
}

// Handlers groups the use cases a Server needs.
type Handlers struct {
	CreateOrder  commands.CreateOrderCommandHandler
	ApplyTrigger commands.ApplyTriggerCommandHandler
	ClaimOrder   commands.ClaimOrderCommandHandler
	FileDispute  commands.FileDisputeCommandHandler
	Reinspect    commands.ReinspectOrderCommandHandler

	GetOrder         queries.GetOrderQueryHandler
	GetOrderHistory  queries.GetOrderHistoryQueryHandler
	GetJobBoard      queries.GetJobBoardQueryHandler
	GetOverdueOrders queries.GetOverdueOrdersQueryHandler
	GetSLATable      queries.GetSLATableQueryHandler
}

func NewServer(h Handlers) *Server {
	return &Server{
		createOrderHandler:      h.CreateOrder,
		applyTriggerHandler:     h.ApplyTrigger,
		claimOrderHandler:       h.ClaimOrder,
		fileDisputeHandler:      h.FileDispute,
		reinspectHandler:        h.Reinspect,
		getOrderHandler:         h.GetOrder,
		getOrderHistoryHandler:  h.GetOrderHistory,
		getJobBoardHandler:      h.GetJobBoard,
		getOverdueOrdersHandler: h.GetOverdueOrders,
		getSLATableHandler:      h.GetSLATable,
	}
}

// RegisterHandlers mounts the API under /api/v1.
func (s *Server) RegisterHandlers(e *echo.Echo) {
	api := e.Group("/api/v1")
	api.POST("/orders", s.CreateOrder)
	api.GET("/orders/overdue", s.GetOverdueOrders)
	api.GET("/orders/:id", s.GetOrder)
	api.GET("/orders/:id/history", s.GetOrderHistory)
	api.POST("/orders/:id/transitions", s.ApplyTrigger)
	api.POST("/orders/:id/claim", s.ClaimOrder)
	api.POST("/orders/:id/dispute", s.FileDispute)
	api.POST("/orders/:id/reinspect", s.Reinspect)
	api.POST("/orders/:id/qc", s.RecordQC)
	api.POST("/orders/:id/qc/reassign", s.ReassignInspector)
	api.POST("/orders/:id/tailor/reassign", s.ReassignTailor)
	api.GET("/job-board", s.GetJobBoard)
	api.GET("/config/sla", s.GetSLATable)
}

// CreateOrder handles POST /api/v1/orders - creates a draft or ingests a scan.
func (s *Server) CreateOrder(c echo.Context) error {
	var req NewOrder
	if err := c.Bind(&req); err != nil {
		return badRequest(c)
	}

	cmd, err := commands.NewCreateOrderCommand(req.OrderID, req.CustomerID, req.GarmentType, req.FitType, req.Priority, req.measurementInputs())
	if err != nil {
		return writeError(c, "", err)
	}

	created, err := s.createOrderHandler.Handle(c.Request().Context(), cmd)
	if err != nil {
		return writeError(c, "", err)
	}
	return c.JSON(http.StatusCreated, toOrder(created, nil))
}

// GetOrder handles GET /api/v1/orders/:id - the effective status.
func (s *Server) GetOrder(c echo.Context) error {
	query, err := queries.NewGetOrderQuery(c.Param("id"))
	if err != nil {
		return writeError(c, "", err)
	}

	status, err := s.getOrderHandler.Handle(c.Request().Context(), query)
	if err != nil {
		return writeError(c, "", err)
	}
	return c.JSON(http.StatusOK, toOrder(status.Order, status.SLA))
}

// GetOrderHistory handles GET /api/v1/orders/:id/history.
func (s *Server) GetOrderHistory(c echo.Context) error {
	query, err := queries.NewGetOrderHistoryQuery(c.Param("id"))
	if err != nil {
		return writeError(c, "", err)
	}

	history, err := s.getOrderHistoryHandler.Handle(c.Request().Context(), query)
	if err != nil {
		return writeError(c, "", err)
	}
	return c.JSON(http.StatusOK, toTransitions(history))
}

// ApplyTrigger handles POST /api/v1/orders/:id/transitions - the generic
// lifecycle call.
func (s *Server) ApplyTrigger(c echo.Context) error {
	var req TransitionRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c)
	}

	trigger, err := order.ParseTrigger(req.Trigger)
	if err != nil {
		return writeError(c, order.Trigger(req.Trigger), err)
	}
	payload, err := toPayload(trigger, req.Payload)
	if err != nil {
		return writeError(c, trigger, err)
	}

	cmd, err := commands.NewApplyTriggerCommand(c.Param("id"), req.Trigger, req.ActorID, payload)
	if err != nil {
		return writeError(c, trigger, err)
	}
	return s.respond(c, trigger, func() (*order.Order, error) {
		return s.applyTriggerHandler.Handle(c.Request().Context(), cmd)
	})
}

// ClaimOrder handles POST /api/v1/orders/:id/claim.
func (s *Server) ClaimOrder(c echo.Context) error {
	var req ClaimRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c)
	}

	cmd, err := commands.NewClaimOrderCommand(c.Param("id"), req.TailorID)
	if err != nil {
		return writeError(c, order.ClaimedByTailor, err)
	}
	return s.respond(c, order.ClaimedByTailor, func() (*order.Order, error) {
		return s.claimOrderHandler.Handle(c.Request().Context(), cmd)
	})
}

// FileDispute handles POST /api/v1/orders/:id/dispute.
func (s *Server) FileDispute(c echo.Context) error {
	var req DisputeRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c)
	}

	cmd, err := commands.NewFileDisputeCommand(c.Param("id"), req.TailorID, req.Reason)
	if err != nil {
		return writeError(c, order.DisputeFiled, err)
	}
	return s.respond(c, order.DisputeFiled, func() (*order.Order, error) {
		return s.fileDisputeHandler.Handle(c.Request().Context(), cmd)
	})
}

// Reinspect handles POST /api/v1/orders/:id/reinspect.
func (s *Server) Reinspect(c echo.Context) error {
	var req ReinspectRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c)
	}

	trigger := reinspectionTrigger(req.Verdict)
	if _, err := reinspection(req.Verdict, req.InspectorID); err != nil {
		return writeError(c, trigger, &order.InvalidPayloadError{Trigger: trigger, Cause: err})
	}

	cmd, err := commands.NewReinspectOrderCommand(c.Param("id"), req.Verdict, req.InspectorID)
	if err != nil {
		return writeError(c, trigger, err)
	}
	return s.respond(c, trigger, func() (*order.Order, error) {
		return s.reinspectHandler.Handle(c.Request().Context(), cmd)
	})
}

// RecordQC handles POST /api/v1/orders/:id/qc - the first-pass verdict,
// routed to qc_passed or qc_failed.
func (s *Server) RecordQC(c echo.Context) error {
	var req QCRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c)
	}

	trigger := verdictTrigger(req.Verdict)
	verdict, err := qcVerdict(req.Verdict, req.category(), req.InspectorID, req.FabricCost, req.LaborFee)
	if err != nil {
		return writeError(c, trigger, &order.InvalidPayloadError{Trigger: trigger, Cause: err})
	}

	cmd, err := commands.NewApplyTriggerCommand(c.Param("id"), string(trigger), req.InspectorID, verdict)
	if err != nil {
		return writeError(c, trigger, err)
	}
	return s.respond(c, trigger, func() (*order.Order, error) {
		return s.applyTriggerHandler.Handle(c.Request().Context(), cmd)
	})
}

// ReassignInspector handles POST /api/v1/orders/:id/qc/reassign - hands an
// inspection in progress to another inspector.
func (s *Server) ReassignInspector(c echo.Context) error {
	var req InspectorReassignRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c)
	}
	return s.reassign(c, order.InspectorReassigned, req.FromInspector, req.ToInspector, req.Reason, req.ActorID)
}

// ReassignTailor handles POST /api/v1/orders/:id/tailor/reassign.
func (s *Server) ReassignTailor(c echo.Context) error {
	var req TailorReassignRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c)
	}
	return s.reassign(c, order.TailorReassigned, req.FromTailor, req.ToTailor, req.Reason, req.ActorID)
}

func (s *Server) reassign(c echo.Context, trigger order.Trigger, from, to, reason, actor string) error {
	payload, err := reassignment(from, to, reason)
	if err != nil {
		return writeError(c, trigger, &order.InvalidPayloadError{Trigger: trigger, Cause: err})
	}

	cmd, err := commands.NewApplyTriggerCommand(c.Param("id"), string(trigger), actor, payload)
	if err != nil {
		return writeError(c, trigger, err)
	}
	return s.respond(c, trigger, func() (*order.Order, error) {
		return s.applyTriggerHandler.Handle(c.Request().Context(), cmd)
	})
}

// GetJobBoard handles GET /api/v1/job-board?limit=N.
func (s *Server) GetJobBoard(c echo.Context) error {
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return badRequest(c)
		}
		limit = n
	}

	query, err := queries.NewGetJobBoardQuery(limit)
	if err != nil {
		return writeError(c, "", err)
	}

	board, err := s.getJobBoardHandler.Handle(c.Request().Context(), query)
	if err != nil {
		return writeError(c, "", err)
	}
	return c.JSON(http.StatusOK, toJobBoard(board))
}

// GetOverdueOrders handles GET /api/v1/orders/overdue.
func (s *Server) GetOverdueOrders(c echo.Context) error {
	overdue, err := s.getOverdueOrdersHandler.Handle(c.Request().Context(), queries.NewGetOverdueOrdersQuery())
	if err != nil {
		return writeError(c, "", err)
	}
	return c.JSON(http.StatusOK, toOverdue(overdue))
}

// GetSLATable handles GET /api/v1/config/sla.
func (s *Server) GetSLATable(c echo.Context) error {
	table, err := s.getSLATableHandler.Handle(c.Request().Context(), queries.NewGetSLATableQuery())
	if err != nil {
		return writeError(c, "", err)
	}
	return c.JSON(http.StatusOK, toSLATable(table))
}

func (s *Server) respond(c echo.Context, trigger order.Trigger, handle func() (*order.Order, error)) error {
	updated, err := handle()
	if err != nil {
		return writeError(c, trigger, err)
	}
	return c.JSON(http.StatusOK, toOrder(updated, nil))
}

// verdictTrigger names the trigger a raw QC verdict leads to, or "" when it
// does not parse.
func verdictTrigger(raw string) order.Trigger {
	if v, err := order.ParseVerdict(raw); err == nil {
		return v.Trigger()
	}
	return ""
}

func reinspectionTrigger(raw string) order.Trigger {
	if v, err := order.ParseReinspectionVerdict(raw); err == nil {
		return v.Trigger()
	}
	return ""
}

func badRequest(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, Error{
		ErrorKind: "bad_request",
		Message:   "Invalid request body",
	})
}
