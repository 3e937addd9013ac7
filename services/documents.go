package services

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"log"
	"strings"
	"time"

	"github.com/madeiras-ouro-preto/sales-api/config"
	"github.com/madeiras-ouro-preto/sales-api/models"
	"github.com/madeiras-ouro-preto/sales-api/utils"
)

//go:embed templates/order.html.tmpl
var templateFS embed.FS

var orderTemplate = template.Must(template.ParseFS(templateFS, "templates/order.html.tmpl"))

const pdfContentType = "application/pdf"

// DocumentService prints quotes and orders
type DocumentService struct {
	company  config.CompanyInfo
	renderer PDFRenderer
	storage  S3Interface
	logoPath string
	loc      *time.Location
}

// NewDocumentService wires the renderer and the optional storage. A nil
// storage disables Publish.
func NewDocumentService(company config.CompanyInfo, renderer PDFRenderer, storage S3Interface, logoPath string, loc *time.Location) *DocumentService {
	if loc == nil {
		loc = time.UTC
	}
	return &DocumentService{
		company:  company,
		renderer: renderer,
		storage:  storage,
		logoPath: logoPath,
		loc:      loc,
	}
}

// PublishedDocument is the result of Publish
type PublishedDocument struct {
	Key       string    `json:"key"`
	FileName  string    `json:"file_name"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

type documentRow struct {
	Description string
	Quantity    string
	Length      string
	Width       string
	Beneficiado string
	Unit        string
	UnitPrice   string
	Total       string
}

type documentData struct {
	Title    string
	Number   string
	Date     string
	Logo     template.URL
	Company  config.CompanyInfo
	Order    models.Order
	Client   models.Client
	Rows     []documentRow
	Subtotal string
	Discount string
	Total    string
}

// DocumentNumber is the short reference printed on documents
func DocumentNumber(order models.Order) string {
	id := order.ID
	if len(id) > 6 {
		id = id[len(id)-6:]
	}
	return strings.ToUpper(id)
}

// FileName is the download name of the PDF, e.g. OuroPreto_ORÇAMENTO_A1B2C3.pdf
func FileName(order models.Order) string {
	return fmt.Sprintf("OuroPreto_%s_%s.pdf", strings.ToUpper(string(order.Type)), DocumentNumber(order))
}

// StorageKey is where Publish puts the PDF of order
func StorageKey(order models.Order) string {
	return fmt.Sprintf("documents/%s/%s.pdf", strings.ToLower(string(order.Type)), order.ID)
}

// RenderHTML fills the document template. client may be nil when the order
// only carries a client name.
func (s *DocumentService) RenderHTML(order models.Order, client *models.Client) (string, error) {
	data := documentData{
		Title:    strings.ToUpper(string(order.Type)),
		Number:   DocumentNumber(order),
		Date:     order.Date.In(s.loc).Format("02/01/2006"),
		Company:  s.company,
		Order:    order,
		Subtotal: utils.FormatBRL(order.Subtotal),
		Discount: utils.FormatBRL(order.TotalDiscount),
		Total:    utils.FormatBRL(order.Total),
	}
	if client != nil {
		data.Client = *client
	}

	if s.logoPath != "" {
		logo, err := LoadLogoDataURI(s.logoPath, LogoMaxWidth)
		if err != nil {
			log.Printf("Skipping document logo: %v", err)
		}
		data.Logo = template.URL(logo)
	}

	for _, item := range order.Items {
		row := documentRow{
			Description: item.Description,
			Quantity:    utils.FormatQuantity(item.Quantity),
			Length:      "-",
			Width:       "-",
			Beneficiado: "-",
			Unit:        string(item.Unit),
			UnitPrice:   utils.FormatBRL(item.UnitPrice),
			Total:       utils.FormatBRL(item.Total),
		}
		if item.LengthM != nil && item.LengthM.IsPositive() {
			row.Length = utils.FormatQuantity(*item.LengthM)
		}
		if item.WidthCM != nil && item.WidthCM.IsPositive() {
			row.Width = utils.FormatQuantity(*item.WidthCM)
		}
		if item.Beneficiado {
			row.Beneficiado = "Benef."
		}
		if row.Unit == "" {
			row.Unit = "un"
		}
		data.Rows = append(data.Rows, row)
	}

	var buf bytes.Buffer
	if err := orderTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

// RenderPDF prints order through the configured renderer
func (s *DocumentService) RenderPDF(ctx context.Context, order models.Order, client *models.Client) ([]byte, error) {
	html, err := s.RenderHTML(order, client)
	if err != nil {
		return nil, err
	}
	return s.renderer.RenderPDF(ctx, html)
}

// Publish renders the PDF, stores it and returns a presigned link to it
func (s *DocumentService) Publish(ctx context.Context, order models.Order, client *models.Client) (*PublishedDocument, error) {
	if s.storage == nil {
		return nil, ErrStorageNotConfigured
	}

	pdf, err := s.RenderPDF(ctx, order, client)
	if err != nil {
		return nil, err
	}

	key := StorageKey(order)
	if err := s.storage.UploadObject(ctx, key, pdf, pdfContentType); err != nil {
		return nil, err
	}
	url, err := s.storage.GetPresignedURL(ctx, key)
	if err != nil {
		return nil, err
	}

	log.Printf("Published %s for order %s", key, order.ID)
	return &PublishedDocument{
		Key:       key,
		FileName:  FileName(order),
		URL:       url,
		ExpiresAt: time.Now().Add(time.Hour).UTC(),
	}, nil
}
