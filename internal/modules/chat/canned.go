package chat

import "strings"

var cannedAnswers = []struct {
	keywords []string
	answer   string
}{
	{
		[]string{"ship", "deliver", "dispatch", "track"},
		"We ship across India in 3 to 7 business days. You'll get a tracking link by email once your order is packed.",
	},
	{
		[]string{"return", "refund", "exchange"},
		"Unworn jerseys with tags can be returned or exchanged within 30 days. Refunds reach your original payment method in 5 to 7 days.",
	},
	{
		[]string{"size", "sizing", "fit", "measure"},
		"Our jerseys run true to size. If you're between sizes or like a relaxed fit, go one size up.",
	},
	{
		[]string{"pay", "upi", "card", "wallet", "netbanking", "cod"},
		"We accept UPI, credit and debit cards, net banking and popular wallets like PhonePe and Paytm.",
	},
	{
		[]string{"contact", "support", "email", "phone", "help"},
		"You can reach us at support@jerseyx.example or through the Contact page. We reply within one business day.",
	},
}

const (
	waitMessage    = "I'm getting a lot of questions right now. Please try again in a moment."
	offlineMessage = "I can't reach the assistant right now. Ask me about shipping, returns, sizing, payments or contacting support."
)

// cannedAnswer returns the first answer whose keywords appear in text.
func cannedAnswer(text string) (string, bool) {
	text = strings.ToLower(text)
	for _, entry := range cannedAnswers {
		for _, kw := range entry.keywords {
			if strings.Contains(text, kw) {
				return entry.answer, true
			}
		}
	}
	return "", false
}
