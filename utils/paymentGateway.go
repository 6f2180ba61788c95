package utils

import (
	"fmt"
	"log"
	"time"

	"gaduka/config"

	"github.com/go-resty/resty/v2"
)

// gatewayClient talks to the external payment processor. The processor is an
// opaque collaborator: the platform only records outcomes.
func gatewayClient() *resty.Client {
	return resty.New().
		SetBaseURL(config.AppConfig.PaymentGatewayURL).
		SetHeader("Authorization", "Bearer "+config.AppConfig.PaymentGatewayKey).
		SetTimeout(10 * time.Second)
}

// NotifyGatewayPayout asks the processor to start a seller payout. Called by
// the payout sweep; a failure leaves the transaction pending for the next run.
func NotifyGatewayPayout(payoutID, sellerID uint, amount float64) error {
	if config.AppConfig.PaymentGatewayURL == "" {
		// No gateway configured (local / test environment): accept locally.
		log.Printf("[GATEWAY] No gateway configured, payout %d accepted locally", payoutID)
		return nil
	}

	resp, err := gatewayClient().R().
		SetBody(map[string]interface{}{
			"payout_id": payoutID,
			"seller_id": sellerID,
			"amount":    amount,
			"currency":  "RUB",
		}).
		Post("/payouts")
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("gateway returned %d: %s", resp.StatusCode(), resp.String())
	}
	return nil
}
