package httphandler

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/lllypuk/styx/internal/application/appcore"
	"github.com/lllypuk/styx/internal/application/ledger"
	"github.com/lllypuk/styx/internal/application/reward"
	userapp "github.com/lllypuk/styx/internal/application/user"
	"github.com/lllypuk/styx/internal/infrastructure/httpserver"
)

// PurchaseBadgeRequest is the shop purchase body; value is the badge cost.
type PurchaseBadgeRequest struct {
	Value    int    `json:"value"`
	ImageURL string `json:"imageUrl"`
}

// RewardResponse reports the daily reward outcome.
type RewardResponse struct {
	Rewarded   bool   `json:"rewarded"`
	Message    string `json:"message"`
	UserID     string `json:"userId,omitempty"`
	TotalCoins *int   `json:"totalCoins,omitempty"`
}

// CoinHandler handles the coin economy: badge purchases and the daily reward.
type CoinHandler struct {
	purchase appcore.UseCase[ledger.PurchaseBadgeCommand, userapp.Result]
	reward   appcore.UseCase[reward.ClaimDailyRewardCommand, reward.Result]
	amount   int
}

// NewCoinHandler creates a new CoinHandler. amount is only used in the response message.
func NewCoinHandler(
	purchase appcore.UseCase[ledger.PurchaseBadgeCommand, userapp.Result],
	rewardUC appcore.UseCase[reward.ClaimDailyRewardCommand, reward.Result],
	amount int,
) *CoinHandler {
	return &CoinHandler{purchase: purchase, reward: rewardUC, amount: amount}
}

// RegisterRoutes registers coin routes with the router.
func (h *CoinHandler) RegisterRoutes(r *httpserver.Router) {
	r.Auth().POST("/profile/purchase-badges", h.PurchaseBadge)
	r.Auth().POST("/users/reward-coins", h.ClaimReward)
}

// PurchaseBadge handles POST /api/profile/purchase-badges.
func (h *CoinHandler) PurchaseBadge(c echo.Context) error {
	subject, ok := requireSubject(c)
	if !ok {
		return respondUnauthorized(c)
	}

	var req PurchaseBadgeRequest
	if err := c.Bind(&req); err != nil {
		return respondInvalidBody(c)
	}

	result, err := h.purchase.Execute(c.Request().Context(), ledger.PurchaseBadgeCommand{
		SubjectID: subject,
		Cost:      req.Value,
		ImageURL:  req.ImageURL,
	})
	if err != nil {
		return httpserver.RespondError(c, err)
	}

	return httpserver.RespondOK(c, ToUserResponse(result.Value))
}

// ClaimReward handles POST /api/users/reward-coins.
func (h *CoinHandler) ClaimReward(c echo.Context) error {
	subject, ok := requireSubject(c)
	if !ok {
		return respondUnauthorized(c)
	}

	result, err := h.reward.Execute(c.Request().Context(), reward.ClaimDailyRewardCommand{SubjectID: subject})
	if err != nil {
		return httpserver.RespondError(c, err)
	}

	if !result.Rewarded {
		return httpserver.RespondOK(c, RewardResponse{
			Rewarded: false,
			Message:  "No reward given. Post already exists for today.",
		})
	}

	total := result.TotalCoins
	return httpserver.RespondOK(c, RewardResponse{
		Rewarded:   true,
		Message:    rewardMessage(h.amount),
		UserID:     subject,
		TotalCoins: &total,
	})
}

func rewardMessage(amount int) string {
	return strconv.Itoa(amount) + " coins rewarded successfully."
}
