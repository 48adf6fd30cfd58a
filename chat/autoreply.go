package chat

import "strings"

// BotUsername is the username attached to auto-generated support replies.
const BotUsername = "Support Bot"

type replyRule struct {
	keywords []string
	response string
}

// Reply categories are checked in order; the first rule with a matching
// keyword wins, so a message containing both a greeting and "order" gets the
// greeting response.
var replyRules = []replyRule{
	{
		keywords: []string{"hello", "hi", "hey", "greetings"},
		response: "Hello! Welcome to E-Shop support. How can I assist you today?",
	},
	{
		keywords: []string{"order", "track", "tracking", "delivery"},
		response: "To track your order, please go to 'My Orders' in your account dashboard. You can view the status and tracking information there.",
	},
	{
		keywords: []string{"return", "refund", "exchange"},
		response: "We accept returns within 30 days of delivery. Please visit our Returns page for more information, or contact support@eshop.com for assistance.",
	},
	{
		keywords: []string{"payment", "pay", "checkout"},
		response: "We accept various payment methods including credit cards, debit cards, and digital wallets. All transactions are secure and encrypted.",
	},
	{
		keywords: []string{"shipping", "delivery", "ship"},
		response: "We offer free shipping on orders over $50. Standard delivery takes 3-5 business days. Express shipping is also available.",
	},
	{
		keywords: []string{"product", "item", "stock", "available"},
		response: "You can check product availability on each product page. If an item is out of stock, you can sign up for restock notifications.",
	},
	{
		keywords: []string{"cancel", "cancellation"},
		response: "Orders can be cancelled within 1 hour of placement. After that, please contact our support team for assistance.",
	},
	{
		keywords: []string{"discount", "coupon", "promo", "offer"},
		response: "Check our Deals section for current promotions! Sign up for our newsletter to receive exclusive discount codes.",
	},
	{
		keywords: []string{"help", "support", "assistance"},
		response: "I'm here to help! You can ask me about orders, shipping, returns, payments, or any other questions about our store.",
	},
	{
		keywords: []string{"thank", "thanks"},
		response: "You're welcome! Is there anything else I can help you with?",
	},
}

const fallbackReply = "Thank you for your message! A support representative will assist you shortly. Meanwhile, you can explore our Help Center for quick answers."

// AutoReply picks the canned support response for a customer message.
// Matching is case-insensitive substring per keyword.
func AutoReply(message string) string {
	message = strings.ToLower(message)
	for _, rule := range replyRules {
		for _, kw := range rule.keywords {
			if strings.Contains(message, kw) {
				return rule.response
			}
		}
	}
	return fallbackReply
}
