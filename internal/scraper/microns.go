package scraper

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/dealscout/bizfinder-pipeline/internal/models"
)

// MicronsSource scrapes the microns.io listings index. Cards carry enough
// data to score without visiting every detail page.
type MicronsSource struct {
	client  *Client
	baseURL string
}

const (
	micronsSourceID      = "microns"
	micronsListingsPath  = "/online-businesses-and-startups-for-sale"
	micronsCardSelector  = ".listing-card"
	micronsLinkSelector  = "a[href*='/startup-listings/']"
	micronsPaginationKey = "c150de50_page"
)

// Categories observed on the site; card text matching one of these lines
// is the listing's category.
var micronsCategories = []string{
	"Micro-SaaS",
	"Web app",
	"Mobile app",
	"Newsletter",
	"E-commerce",
	"Marketplace",
	"Directory",
	"Browser Extension",
	"Agency",
	"Content",
	"Community",
}

// NewMicronsSource creates a microns.io source using the shared client.
func NewMicronsSource(client *Client) *MicronsSource {
	return &MicronsSource{client: client, baseURL: "https://www.microns.io"}
}

// SourceID returns the stable source identifier.
func (s *MicronsSource) SourceID() string { return micronsSourceID }

// FetchListings walks the paginated index and returns normalized listings.
func (s *MicronsSource) FetchListings(ctx context.Context, maxPages int) ([]models.Listing, error) {
	if maxPages <= 0 {
		maxPages = 1
	}

	var out []models.Listing
	for page := 1; page <= maxPages; page++ {
		url := s.baseURL + micronsListingsPath
		if page > 1 {
			url = fmt.Sprintf("%s?%s=%d", url, micronsPaginationKey, page)
		}

		doc, err := s.client.Get(ctx, url)
		if err != nil {
			return out, fmt.Errorf("failed to fetch microns page %d: %w", page, err)
		}

		listings := s.parseIndex(doc)
		if len(listings) == 0 {
			break
		}
		out = append(out, listings...)
	}
	return out, nil
}

// parseIndex extracts listings from one index page document.
func (s *MicronsSource) parseIndex(doc *goquery.Document) []models.Listing {
	now := time.Now().UTC()
	var out []models.Listing

	doc.Find(micronsCardSelector).Each(func(_ int, card *goquery.Selection) {
		href, ok := card.Find(micronsLinkSelector).First().Attr("href")
		if !ok || href == "" {
			return
		}
		url := href
		if strings.HasPrefix(href, "/") {
			url = s.baseURL + href
		}
		slugParts := strings.Split(strings.TrimSuffix(href, "/"), "/")
		slug := slugParts[len(slugParts)-1]

		lines := cardLines(card)
		l := models.Listing{
			SourceID:   micronsSourceID,
			ExternalID: slug,
			URL:        url,
			ObservedAt: now,
		}

		l.Category = matchCategory(lines)

		// Card layout puts the value on the line before its label.
		for i, line := range lines {
			if i == 0 {
				continue
			}
			switch line {
			case "Annual Revenue":
				l.AnnualRevenue = ParseMoney(lines[i-1])
			case "Asking Price":
				l.AskingPrice = ParseMoney(lines[i-1])
			}
		}

		// Title is the first line that is not a category, label, or price;
		// the next such line is the description.
		for _, line := range lines {
			if isCategoryLine(line) || line == "Annual Revenue" || line == "Asking Price" {
				continue
			}
			if strings.HasPrefix(line, "$") {
				continue
			}
			if l.Title == "" {
				l.Title = line
				continue
			}
			l.Description = line
			break
		}

		if l.Title == "" {
			return
		}
		out = append(out, l)
	})
	return out
}

func cardLines(card *goquery.Selection) []string {
	var lines []string
	for _, raw := range strings.Split(card.Text(), "\n") {
		if line := strings.TrimSpace(raw); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func matchCategory(lines []string) string {
	for _, line := range lines {
		for _, c := range micronsCategories {
			if strings.EqualFold(line, c) {
				return c
			}
		}
	}
	return ""
}

func isCategoryLine(line string) bool {
	for _, c := range micronsCategories {
		if strings.EqualFold(line, c) {
			return true
		}
	}
	return false
}
