package store

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var sampleDocuments = []SupportDocument{
	{
		Title:    "How to reset your password",
		Category: "account",
		Content: "To reset your password, open the sign-in page and choose " +
			"'Forgot password'. We email a reset link to your registered address; " +
			"the link expires after 30 minutes. If the email does not arrive, " +
			"check your spam folder before requesting another one.",
	},
	{
		Title:    "Understanding your invoice",
		Category: "billing",
		Content: "Invoices are issued on the first day of each billing cycle and " +
			"cover the previous cycle's usage. Pro-rated charges appear when a plan " +
			"changes mid-cycle. You can download past invoices from Settings > Billing.",
	},
	{
		Title:    "Requesting a refund",
		Category: "billing",
		Content: "Refunds are available within 14 days of a charge for annual plans " +
			"and within 48 hours for monthly plans. Contact support with the invoice " +
			"number; approved refunds reach your payment method in 5 to 10 business days.",
	},
	{
		Title:    "Fixing sign-in problems",
		Category: "account",
		Content: "If sign-in fails with a correct password, clear your browser " +
			"cookies for our domain and try again. Accounts lock for 15 minutes " +
			"after five failed attempts. Two-factor codes are time-based, so check " +
			"that your device clock is accurate.",
	},
	{
		Title:    "Changing or cancelling your plan",
		Category: "billing",
		Content: "Plans can be changed at any time from Settings > Billing. " +
			"Downgrades take effect at the next cycle; upgrades apply immediately " +
			"with a pro-rated charge. Cancelling keeps the account readable until " +
			"the paid period ends.",
	},
	{
		Title:    "Exporting your data",
		Category: "account",
		Content: "A full export of your account data is available from Settings > " +
			"Privacy. Exports are packaged as a zip archive and a download link is " +
			"emailed within 24 hours. Links stay valid for 7 days.",
	},
}

// SeedSampleData loads the starter knowledge base when the store is empty.
// Safe to call on every startup.
func SeedSampleData(ctx context.Context, s Store, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	n, err := s.Count(ctx)
	if err != nil {
		return errors.Wrap(err, "count documents")
	}
	if n > 0 {
		logger.Debug("knowledge base already populated", "documents", n)
		return nil
	}

	for _, doc := range sampleDocuments {
		doc.ID = uuid.NewString()
		if err := s.Upsert(ctx, doc); err != nil {
			return errors.Wrapf(err, "seed document %q", doc.Title)
		}
	}
	logger.Info("seeded knowledge base", "documents", len(sampleDocuments))
	return nil
}
