package delivery

import (
	"fmt"
	"strings"

	"github.com/vitalcosmeticos/catalog/internal/domain"
	apperrors "github.com/vitalcosmeticos/catalog/pkg/errors"
)

const (
	ChannelWhatsApp = "whatsapp"
	ChannelEmail    = "email"

	defaultFolderIntro = "Confira os produtos selecionados!"
)

// Link is a ready-to-open deep link.
type Link struct {
	Channel string `json:"channel"`
	URL     string `json:"url"`
}

type Config struct {
	// StorePhone receives product inquiries from the storefront.
	StorePhone  string
	CountryCode string
}

// Builder turns catalog records into share and reply links.
type Builder struct {
	storePhone  string
	countryCode string
}

func NewBuilder(cfg Config) *Builder {
	cc := Digits(cfg.CountryCode)
	if cc == "" {
		cc = DefaultCountryCode
	}
	return &Builder{storePhone: Digits(cfg.StorePhone), countryCode: cc}
}

func (b *Builder) whatsApp(phone, text string) Link {
	return Link{Channel: ChannelWhatsApp, URL: whatsAppURL(NormalizePhone(phone, b.countryCode), text)}
}

// FolderShare returns a WhatsApp link when the folder has a client phone
// and a mailto link when it has a client email.
func (b *Builder) FolderShare(f *domain.DigitalFolder) ([]Link, error) {
	var links []Link
	if phone := deref(f.ClientPhone); Digits(phone) != "" {
		links = append(links, b.whatsApp(phone, folderWhatsAppText(f)))
	}
	if email := deref(f.ClientEmail); email != "" {
		links = append(links, Link{
			Channel: ChannelEmail,
			URL:     MailtoURL(email, FolderEmailSubject(f.Name), folderEmailBody(f)),
		})
	}
	if len(links) == 0 {
		return nil, apperrors.InvalidInput("folder has no client phone or email")
	}
	return links, nil
}

func FolderEmailSubject(name string) string {
	return "Catálogo Personalizado - " + name
}

func folderWhatsAppText(f *domain.DigitalFolder) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Olá! Preparei um catálogo especial para você: *%s*\n\n", f.Name)
	sb.WriteString(orDefault(deref(f.Description), defaultFolderIntro))
	sb.WriteString("\n\nProdutos inclusos:\n")
	for i, p := range f.Products {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString("• " + p.Name)
	}
	sb.WriteString("\n\nEntre em contato para mais informações!")
	return sb.String()
}

func folderEmailBody(f *domain.DigitalFolder) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Olá %s,\n\n", orDefault(deref(f.ClientName), "Cliente"))
	fmt.Fprintf(&sb, "Preparei um catálogo especial para você: %s\n\n", f.Name)
	sb.WriteString(orDefault(deref(f.Description), defaultFolderIntro))
	sb.WriteString("\n\nProdutos inclusos:\n")
	for i, p := range f.Products {
		if i > 0 {
			sb.WriteString("\n")
		}
		category := p.Category
		if category == "" {
			category = domain.UncategorizedLabel
		}
		fmt.Fprintf(&sb, "• %s - %s", p.Name, category)
	}
	sb.WriteString("\n\nPara mais informações, entre em contato conosco.\n\nAtenciosamente,\nEquipe Vital Cosméticos")
	return sb.String()
}

// ContactReply opens a WhatsApp chat with the person who left c.
func (b *Builder) ContactReply(c *domain.Contact) (Link, error) {
	if Digits(c.Phone) == "" {
		return Link{}, apperrors.InvalidInput("contact has no phone number")
	}
	var text string
	if product := deref(c.ProductName); product != "" {
		text = fmt.Sprintf("Olá %s! Vi seu interesse no produto %s. Como posso ajudar?", c.Name, product)
	} else {
		text = fmt.Sprintf("Olá %s! Vi sua mensagem e gostaria de ajudar. Como posso auxiliá-lo?", c.Name)
	}
	return b.whatsApp(c.Phone, text), nil
}

// ProductInquiry opens a WhatsApp chat with the store about p.
func (b *Builder) ProductInquiry(p *domain.Product) Link {
	text := fmt.Sprintf("Olá! Gostaria de mais informações sobre o produto: %s (Código: %s)", p.Name, p.Code)
	return b.whatsApp(b.storePhone, text)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
