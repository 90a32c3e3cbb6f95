package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"raffle/internal/raffle/models"
	id "raffle/pkg/domain"
	dErrors "raffle/pkg/domain-errors"
	"raffle/pkg/platform/httputil"
	"raffle/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

// Service defines the raffle operations exposed over HTTP.
type Service interface {
	Bootstrap(ctx context.Context, caller id.Identity) (*models.Registry, error)
	CreateRaffle(ctx context.Context, caller id.Identity, req models.CreateRaffleRequest) (*models.Raffle, error)
	EnterRaffle(ctx context.Context, caller id.Identity, raffleID id.RaffleID, amount uint64) (*models.Raffle, error)
	PickWinner(ctx context.Context, caller id.Identity, raffleID id.RaffleID) (*models.Raffle, error)
	CloseRaffle(ctx context.Context, caller id.Identity, raffleID id.RaffleID) (*models.Raffle, error)
	ConcludeRaffle(ctx context.Context, caller id.Identity, raffleID id.RaffleID) (*models.Raffle, error)
	ClaimNFT(ctx context.Context, caller id.Identity, raffleID id.RaffleID, req models.ClaimRequest) (*models.ClaimResult, error)
	GetRegistry(ctx context.Context) (*models.Registry, error)
	GetRaffle(ctx context.Context, raffleID id.RaffleID) (*models.Raffle, error)
	ListRaffles(ctx context.Context, filter models.ListFilter) ([]*models.Raffle, error)
}

// Handler wires raffle endpoints to the raffle service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a raffle handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts the raffle endpoints on the router. Mutating endpoints
// expect a verified caller in the request context.
func (h *Handler) Register(r chi.Router) {
	r.Route("/v1", func(r chi.Router) {
		r.Get("/registry", h.HandleGetRegistry)
		r.Post("/registry/bootstrap", h.HandleBootstrap)

		r.Get("/raffles", h.HandleListRaffles)
		r.Post("/raffles", h.HandleCreateRaffle)
		r.Route("/raffles/{id}", func(r chi.Router) {
			r.Get("/", h.HandleGetRaffle)
			r.Post("/entries", h.HandleEnterRaffle)
			r.Post("/winner", h.HandlePickWinner)
			r.Post("/close", h.HandleCloseRaffle)
			r.Post("/conclude", h.HandleConcludeRaffle)
			r.Post("/claim", h.HandleClaimNFT)
		})
	})
}

// HandleBootstrap handles POST /v1/registry/bootstrap.
func (h *Handler) HandleBootstrap(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.requireCaller(w, r)
	if !ok {
		return
	}

	reg, err := h.service.Bootstrap(ctx, caller)
	if err != nil {
		h.writeServiceError(ctx, w, "bootstrap", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, FromRegistry(reg))
}

// HandleGetRegistry handles GET /v1/registry.
func (h *Handler) HandleGetRegistry(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reg, err := h.service.GetRegistry(ctx)
	if err != nil {
		h.writeServiceError(ctx, w, "get registry", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromRegistry(reg))
}

// HandleCreateRaffle handles POST /v1/raffles.
func (h *Handler) HandleCreateRaffle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	caller, ok := h.requireCaller(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[CreateRaffleRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	created, err := h.service.CreateRaffle(ctx, caller, req.ToModel())
	if err != nil {
		h.writeServiceError(ctx, w, "create raffle", err)
		return
	}

	h.logger.InfoContext(ctx, "raffle created via api",
		"request_id", requestID,
		"raffle_id", created.ID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	w.Header().Set("Location", "/v1/raffles/"+created.ID.String())
	httputil.WriteJSON(w, http.StatusCreated, FromRaffle(created, requestcontext.Now(ctx)))
}

// HandleListRaffles handles GET /v1/raffles.
func (h *Handler) HandleListRaffles(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	filter, err := parseListFilter(r.URL.Query())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	raffles, err := h.service.ListRaffles(ctx, filter)
	if err != nil {
		h.writeServiceError(ctx, w, "list raffles", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromRaffles(raffles, requestcontext.Now(ctx)))
}

// HandleGetRaffle handles GET /v1/raffles/{id}.
func (h *Handler) HandleGetRaffle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	raffleID, ok := raffleIDParam(w, r)
	if !ok {
		return
	}

	found, err := h.service.GetRaffle(ctx, raffleID)
	if err != nil {
		h.writeServiceError(ctx, w, "get raffle", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromRaffle(found, requestcontext.Now(ctx)))
}

// HandleEnterRaffle handles POST /v1/raffles/{id}/entries.
func (h *Handler) HandleEnterRaffle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	caller, ok := h.requireCaller(w, r)
	if !ok {
		return
	}
	raffleID, ok := raffleIDParam(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[EnterRaffleRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	entered, err := h.service.EnterRaffle(ctx, caller, raffleID, *req.Amount)
	if err != nil {
		h.writeServiceError(ctx, w, "enter raffle", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromRaffle(entered, requestcontext.Now(ctx)))
}

// HandlePickWinner handles POST /v1/raffles/{id}/winner.
func (h *Handler) HandlePickWinner(w http.ResponseWriter, r *http.Request) {
	h.handleTransition(w, r, "pick winner", h.service.PickWinner)
}

// HandleCloseRaffle handles POST /v1/raffles/{id}/close.
func (h *Handler) HandleCloseRaffle(w http.ResponseWriter, r *http.Request) {
	h.handleTransition(w, r, "close raffle", h.service.CloseRaffle)
}

// HandleConcludeRaffle handles POST /v1/raffles/{id}/conclude.
func (h *Handler) HandleConcludeRaffle(w http.ResponseWriter, r *http.Request) {
	h.handleTransition(w, r, "conclude raffle", h.service.ConcludeRaffle)
}

// handleTransition serves the body-less creator operations.
func (h *Handler) handleTransition(w http.ResponseWriter, r *http.Request, action string,
	op func(ctx context.Context, caller id.Identity, raffleID id.RaffleID) (*models.Raffle, error)) {
	ctx := r.Context()
	caller, ok := h.requireCaller(w, r)
	if !ok {
		return
	}
	raffleID, ok := raffleIDParam(w, r)
	if !ok {
		return
	}

	updated, err := op(ctx, caller, raffleID)
	if err != nil {
		h.writeServiceError(ctx, w, action, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromRaffle(updated, requestcontext.Now(ctx)))
}

// HandleClaimNFT handles POST /v1/raffles/{id}/claim.
func (h *Handler) HandleClaimNFT(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	caller, ok := h.requireCaller(w, r)
	if !ok {
		return
	}
	raffleID, ok := raffleIDParam(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[ClaimRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.service.ClaimNFT(ctx, caller, raffleID, req.ToModel())
	if err != nil {
		h.writeServiceError(ctx, w, "claim nft", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromClaim(result, requestcontext.Now(ctx)))
}

func (h *Handler) requireCaller(w http.ResponseWriter, r *http.Request) (id.Identity, bool) {
	caller := requestcontext.Caller(r.Context())
	if caller.IsZero() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "signed request required"))
		return id.Identity{}, false
	}
	return caller, true
}

func raffleIDParam(w http.ResponseWriter, r *http.Request) (id.RaffleID, bool) {
	raffleID, err := id.ParseRaffleID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return 0, false
	}
	return raffleID, true
}

// writeServiceError logs infrastructure failures; domain rejections are
// already logged by the service.
func (h *Handler) writeServiceError(ctx context.Context, w http.ResponseWriter, action string, err error) {
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, action+" failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
	}
	httputil.WriteError(w, err)
}
