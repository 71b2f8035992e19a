package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/example/tableside/internal/models"
)

// TelegramService handles sending notifications to Telegram.
type TelegramService struct {
	botToken    string
	adminChatID string
}

// NewTelegramService creates a new TelegramService.
func NewTelegramService(botToken, adminChatID string) *TelegramService {
	return &TelegramService{
		botToken:    botToken,
		adminChatID: adminChatID,
	}
}

type telegramMessage struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

// SendMessage sends a message to specified chat.
func (s *TelegramService) SendMessage(chatID, text string) error {
	if s.botToken == "" {
		log.Println("[Telegram] Bot token not configured")
		return nil
	}

	url := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", s.botToken)

	msg := telegramMessage{
		ChatID:    chatID,
		Text:      text,
		ParseMode: "HTML",
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		log.Printf("[Telegram] Failed to send message: %v", err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("[Telegram] Unexpected status: %d", resp.StatusCode)
		return fmt.Errorf("telegram returned status %d", resp.StatusCode)
	}

	return nil
}

// SendToAdmin sends a message to the admin chat.
func (s *TelegramService) SendToAdmin(text string) error {
	if s.adminChatID == "" {
		log.Println("[Telegram] Admin chat ID not configured")
		return nil
	}
	return s.SendMessage(s.adminChatID, text)
}

// FormatPrice formats price with currency and thousand separators.
func FormatPrice(amount float64, currency string) string {
	if currency == "" {
		currency = "USD"
	}
	intAmount := int64(amount)
	str := fmt.Sprintf("%d", intAmount)

	var result strings.Builder
	length := len(str)
	for i, digit := range str {
		if i > 0 && (length-i)%3 == 0 {
			result.WriteString(",")
		}
		result.WriteRune(digit)
	}

	return result.String() + " " + currency
}

// OrderNotification contains order data for Telegram notification.
type OrderNotification struct {
	OrderNumber  string
	TableNumber  int
	CustomerName string
	Items        []models.CartItem
	TotalAmount  float64
	Currency     string
}

// NotifyNewOrder sends notification about a new table order to admin chat.
func (s *TelegramService) NotifyNewOrder(order OrderNotification) error {
	if s.adminChatID == "" {
		return nil
	}

	var itemsList strings.Builder
	for i, item := range order.Items {
		itemsList.WriteString(fmt.Sprintf("%d. <b>%s</b>\n   %d x %s = %s\n",
			i+1,
			item.ProductName,
			item.Quantity,
			FormatPrice(item.UnitPrice, order.Currency),
			FormatPrice(item.LineTotal(), order.Currency),
		))
		if item.SpecialInstructions != "" {
			itemsList.WriteString(fmt.Sprintf("   <i>%s</i>\n", item.SpecialInstructions))
		}
	}

	customer := order.CustomerName
	if customer == "" {
		customer = "Guest"
	}

	message := fmt.Sprintf(`<b>🛒 NEW ORDER!</b>
<b>📋 Order:</b> %s
<b>🪑 Table:</b> %d
<b>👤 Customer:</b> %s
<b>📦 Items:</b>
%s
<b>💰 Total:</b> %s
━━━━━━━━━━━━━━━━━━`,
		order.OrderNumber,
		order.TableNumber,
		customer,
		itemsList.String(),
		FormatPrice(order.TotalAmount, order.Currency),
	)

	return s.SendToAdmin(strings.TrimSpace(message))
}

// NotifySurveySubmitted sends notification about a submitted satisfaction
// survey to admin chat.
func (s *TelegramService) NotifySurveySubmitted(survey models.SurveySubmission) error {
	if s.adminChatID == "" {
		return nil
	}

	stars := strings.Repeat("⭐", survey.Rating)
	if stars == "" {
		stars = "—"
	}

	comment := survey.Comment
	if comment == "" {
		comment = "(no comment)"
	}

	message := fmt.Sprintf(`<b>📝 SURVEY SUBMITTED</b>
<b>📋 Order:</b> %s
<b>⭐ Rating:</b> %s
<b>💬 Comment:</b> %s
━━━━━━━━━━━━━━━━━━`,
		survey.OrderID,
		stars,
		comment,
	)

	return s.SendToAdmin(strings.TrimSpace(message))
}
