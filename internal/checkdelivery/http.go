// Package checkdelivery manages delivery layer of check deposits.
package checkdelivery

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/fintru/wallet-ledger/internal/domain"
	"github.com/fintru/wallet-ledger/internal/middleware"
	"github.com/fintru/wallet-ledger/pkg/errorspkg"
	"github.com/fintru/wallet-ledger/pkg/jsonresponse"
	"github.com/fintru/wallet-ledger/pkg/moneypkg"
	"github.com/fintru/wallet-ledger/pkg/tokenpkg"
)

// Service provides service layer interface needed by check delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package checkdelivery
type Service interface {
	Deposit(ctx context.Context, owner string, arg domain.CreateCheckDepositParams) (domain.CheckDeposit, domain.RiskAssessment, error)
	Resolve(ctx context.Context, checkID int64, approve bool, reason string) (domain.CheckDeposit, error)
	List(ctx context.Context, owner string, pageSize, pageID int32) ([]domain.CheckDeposit, error)
}

// Handler facilitates check delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns check handler.
func NewHandler(cs Service) *Handler {
	return &Handler{service: cs}
}

type depositRequest struct {
	WalletID      int64  `json:"wallet_id" binding:"required,min=1"`
	Amount        string `json:"amount" binding:"required"`
	CheckNumber   string `json:"check_number" binding:"required"`
	RoutingNumber string `json:"routing_number" binding:"required,len=9,numeric"`
	AccountNumber string `json:"account_number" binding:"required"`
	BankName      string `json:"bank_name" binding:"required"`
	PayeeName     string `json:"payee_name" binding:"required"`
	CheckDate     string `json:"check_date" binding:"required"`
	ImageName     string `json:"image_name"`
}

type depositData struct {
	Check      domain.CheckDeposit   `json:"check"`
	Assessment domain.RiskAssessment `json:"assessment"`
}

type depositResponse struct {
	Data depositData `json:"data,omitempty"`
}

// Deposit handles http request to deposit a check into a wallet. The check is
// risk scored and either posted immediately or parked for verification.
func (h *Handler) Deposit(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req depositRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, jsonresponse.Error(err))

		return
	}

	checkDate, err := time.Parse("2006-01-02", req.CheckDate)
	if err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, jsonresponse.Error(err))

		return
	}

	authPayload := gctx.MustGet(middleware.AuthPayloadKey).(*tokenpkg.Payload)

	check, assessment, err := h.service.Deposit(ctx, authPayload.Username, domain.CreateCheckDepositParams{
		WalletID:      req.WalletID,
		Amount:        req.Amount,
		CheckNumber:   req.CheckNumber,
		RoutingNumber: req.RoutingNumber,
		AccountNumber: req.AccountNumber,
		BankName:      req.BankName,
		PayeeName:     req.PayeeName,
		CheckDate:     checkDate,
		ImageName:     req.ImageName,
	})
	if err != nil {
		l.Info().Err(err).Send()

		switch err {
		case domain.ErrWalletNotFound:
			gctx.JSON(http.StatusNotFound, jsonresponse.Error(err))
			return
		case domain.ErrWalletOwnerMismatch:
			gctx.JSON(http.StatusUnauthorized, jsonresponse.Error(err))
			return
		case domain.ErrInvalidRoutingNumber, moneypkg.ErrInvalidAmount, moneypkg.ErrNegativeAmount:
			gctx.JSON(http.StatusBadRequest, jsonresponse.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, jsonresponse.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusCreated, depositResponse{Data: depositData{check, assessment}})
}

type resolveURI struct {
	ID int64 `uri:"id" binding:"required,min=1"`
}

type resolveRequest struct {
	Approve bool   `json:"approve"`
	Reason  string `json:"reason"`
}

type resolveData struct {
	Check domain.CheckDeposit `json:"check"`
}

type resolveResponse struct {
	Data resolveData `json:"data,omitempty"`
}

// Resolve handles http request to clear or reject a check that is awaiting
// verification.
func (h *Handler) Resolve(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var uri resolveURI
	if err := gctx.ShouldBindUri(&uri); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, jsonresponse.Error(err))

		return
	}

	var req resolveRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, jsonresponse.Error(err))

		return
	}

	check, err := h.service.Resolve(ctx, uri.ID, req.Approve, req.Reason)
	if err != nil {
		l.Info().Err(err).Send()

		switch err {
		case domain.ErrCheckNotFound:
			gctx.JSON(http.StatusNotFound, jsonresponse.Error(err))
			return
		case domain.ErrCheckAlreadyResolved:
			gctx.JSON(http.StatusConflict, jsonresponse.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, jsonresponse.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusOK, resolveResponse{Data: resolveData{check}})
}

type listRequest struct {
	PageID   int32 `form:"page_id" binding:"required,min=1"`
	PageSize int32 `form:"page_size" binding:"required,min=1,max=100"`
}

type listData struct {
	Checks []domain.CheckDeposit `json:"checks"`
}

type listResponse struct {
	Data listData `json:"data,omitempty"`
}

// List handles http request to list the requester's check deposits, newest
// first.
func (h *Handler) List(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req listRequest
	if err := gctx.ShouldBindQuery(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, jsonresponse.Error(err))

		return
	}

	authPayload := gctx.MustGet(middleware.AuthPayloadKey).(*tokenpkg.Payload)

	checks, err := h.service.List(ctx, authPayload.Username, req.PageSize, req.PageID)
	if err != nil {
		gctx.JSON(http.StatusInternalServerError, jsonresponse.Error(errorspkg.ErrInternal))
		return
	}

	gctx.JSON(http.StatusOK, listResponse{Data: listData{checks}})
}
