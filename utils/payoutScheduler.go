package utils

import (
	"log"

	"gaduka/database"
	courseModels "gaduka/models/course"

	"github.com/robfig/cron/v3"
)

// InitializePayoutScheduler sets up the payout settlement sweep.
func InitializePayoutScheduler() {
	log.Println("[PAYOUT-SCHEDULER] Initializing payout scheduler...")

	c := cron.New()

	// Run daily at 10 AM to push pending payouts to the gateway
	c.AddFunc("0 10 * * *", func() {
		log.Println("[PAYOUT-SCHEDULER] Running daily payout sweep...")
		ProcessPendingPayouts()
	})

	c.Start()
	log.Println("[PAYOUT-SCHEDULER] Payout scheduler started - runs daily at 10 AM")
}

// ProcessPendingPayouts moves pending payout transactions to processing and
// notifies the payment gateway for each of them.
func ProcessPendingPayouts() {
	db := database.Database.Db

	var pending []courseModels.PayoutTransaction
	if err := db.Where("status = ?", courseModels.PayoutPending).Find(&pending).Error; err != nil {
		log.Printf("[PAYOUT-SCHEDULER] Error fetching pending payouts: %v", err)
		return
	}

	log.Printf("[PAYOUT-SCHEDULER] Found %d pending payouts", len(pending))

	for _, payout := range pending {
		if err := NotifyGatewayPayout(payout.ID, payout.SellerID, payout.Amount); err != nil {
			log.Printf("[PAYOUT-SCHEDULER] Gateway rejected payout %d: %v", payout.ID, err)
			continue
		}

		if err := db.Model(&courseModels.PayoutTransaction{}).
			Where("id = ? AND status = ?", payout.ID, courseModels.PayoutPending).
			Update("status", courseModels.PayoutProcessing).Error; err != nil {
			log.Printf("[PAYOUT-SCHEDULER] Error updating payout %d: %v", payout.ID, err)
			continue
		}
		log.Printf("[PAYOUT-SCHEDULER] Payout %d moved to processing", payout.ID)
	}
}
