package services

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/madeiras-ouro-preto/sales-api/models"
	"github.com/madeiras-ouro-preto/sales-api/utils"
)

// BuildWhatsAppMessage renders the plain-text summary sent to a client
func BuildWhatsAppMessage(order models.Order, companyName string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Olá! Segue seu %s da %s:\n", strings.ToLower(string(order.Type)), companyName)
	fmt.Fprintf(&b, "Cliente: %s\n", order.ClientName)
	b.WriteString("Itens:\n")
	for _, item := range order.Items {
		fmt.Fprintf(&b, "%s %s - %s (%s)\n",
			utils.FormatQuantity(item.Quantity), item.Unit, item.Description, utils.FormatBRL(item.Total))
	}
	fmt.Fprintf(&b, "\nTotal: %s\n", utils.FormatBRL(order.Total))
	b.WriteString("Posso te ajudar em mais algo?")
	return b.String()
}

// NormalizePhone keeps the digits of phone and prefixes the Brazilian country
// code on local numbers.
func NormalizePhone(phone string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)
	if digits != "" && len(digits) <= 11 && !strings.HasPrefix(digits, "55") {
		digits = "55" + digits
	}
	return digits
}

// WhatsAppURL builds a click-to-chat link carrying message
func WhatsAppURL(phone, message string) string {
	text := strings.ReplaceAll(url.QueryEscape(message), "+", "%20")
	return fmt.Sprintf("https://wa.me/%s?text=%s", NormalizePhone(phone), text)
}
