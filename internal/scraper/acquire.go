package scraper

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/dealscout/bizfinder-pipeline/internal/models"
)

// AcquireSource scrapes acquire.com. Index cards only carry headline
// numbers, so each listing's detail page is fetched for the full record.
type AcquireSource struct {
	client  *Client
	baseURL string
}

const (
	acquireSourceID     = "acquire"
	acquireLinkSelector = "a[href*='/startup/']"
)

// NewAcquireSource creates an acquire.com source using the shared client.
func NewAcquireSource(client *Client) *AcquireSource {
	return &AcquireSource{client: client, baseURL: "https://app.acquire.com"}
}

// SourceID returns the stable source identifier.
func (s *AcquireSource) SourceID() string { return acquireSourceID }

// FetchListings fetches the marketplace index and then each listing's
// detail page, up to maxListings.
func (s *AcquireSource) FetchListings(ctx context.Context, maxListings int) ([]models.Listing, error) {
	doc, err := s.client.Get(ctx, s.baseURL+"/all-listing/")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch acquire index: %w", err)
	}

	urls := s.listingURLs(doc)
	if maxListings > 0 && len(urls) > maxListings {
		urls = urls[:maxListings]
	}

	var out []models.Listing
	for _, url := range urls {
		detail, err := s.client.Get(ctx, url)
		if err != nil {
			// One broken listing page should not sink the batch.
			continue
		}
		if l, ok := s.parseDetail(detail, url); ok {
			out = append(out, l)
		}
	}
	return out, nil
}

func (s *AcquireSource) listingURLs(doc *goquery.Document) []string {
	seen := make(map[string]bool)
	var urls []string
	doc.Find(acquireLinkSelector).Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok {
			return
		}
		if strings.HasPrefix(href, "/") {
			href = s.baseURL + href
		}
		if !seen[href] {
			seen[href] = true
			urls = append(urls, href)
		}
	})
	return urls
}

// idRe matches /startup/{user_id}/{listing_id} URLs.
var idRe = regexp.MustCompile(`/startup/[^/]+/([^/?#]+)`)

// ExtractListingID pulls the listing id out of an acquire.com URL.
func ExtractListingID(url string) string {
	m := idRe.FindStringSubmatch(url)
	if m == nil {
		return ""
	}
	return m[1]
}

var (
	priceLineRe    = regexp.MustCompile(`^\$[\d,.]+[kKmMbB]?$`)
	customersRe    = regexp.MustCompile(`([\d,]+)\s+customers`)
	teamSizeRe     = regexp.MustCompile(`([\d,]+)\s+(?:employees|team members)`)
	titleExclusion = []string{
		"TTM REVENUE", "TTM PROFIT", "ASKING PRICE", "UPGRADE TO",
		"CHAT WITH THE FOUNDER", "ANNUAL GROWTH", "LAST MONTH",
		"MULTIPLES", "PROFIT MARGIN", "CHURN RATE",
	}
)

// parseDetail extracts one listing from a detail page. The page's metric
// blocks put the value on the line after its label.
func (s *AcquireSource) parseDetail(doc *goquery.Document, url string) (models.Listing, bool) {
	id := ExtractListingID(url)
	if id == "" {
		return models.Listing{}, false
	}

	l := models.Listing{
		SourceID:   acquireSourceID,
		ExternalID: id,
		URL:        url,
		ObservedAt: time.Now().UTC(),
	}

	lines := pageLines(doc)
	for i, line := range lines {
		upper := strings.ToUpper(line)
		next := ""
		if i+1 < len(lines) {
			next = lines[i+1]
		}

		switch {
		case strings.Contains(upper, "ASKING PRICE"):
			if l.AskingPrice == nil {
				l.AskingPrice = ParseMoney(next)
			}
		case strings.Contains(upper, "TTM REVENUE"):
			if l.AnnualRevenue == nil {
				l.AnnualRevenue = ParseMoney(next)
			}
		case strings.Contains(upper, "TTM PROFIT"):
			if l.AnnualProfit == nil {
				l.AnnualProfit = ParseMoney(next)
			}
		case strings.Contains(upper, "ANNUAL RECURRING REVENUE"):
			if l.MRR == nil {
				if arr := ParseMoney(next); arr != nil {
					monthly := *arr / 12
					l.MRR = &monthly
				}
			}
		case strings.Contains(upper, "DATE LISTED"):
			if l.PostedAt == nil {
				l.PostedAt = ParseMonthDate(next)
			}
		case strings.Contains(upper, "TECH STACK"):
			if l.TechStack == nil && next != "" {
				stack := next
				l.TechStack = &stack
			}
		case strings.Contains(upper, "REASON FOR SELLING"):
			if l.SellerReason == nil && next != "" {
				reason := next
				l.SellerReason = &reason
			}
		}

		if m := customersRe.FindStringSubmatch(line); m != nil && l.CustomerCount == nil {
			if n, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", "")); err == nil {
				l.CustomerCount = &n
			}
		}
		if m := teamSizeRe.FindStringSubmatch(line); m != nil && l.EmployeeCount == nil {
			if n, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", "")); err == nil {
				l.EmployeeCount = &n
			}
		}
	}

	l.Title = findTitle(doc, lines)
	l.Category = findCategory(doc)
	if l.Title == "" {
		return models.Listing{}, false
	}
	return l, true
}

func pageLines(doc *goquery.Document) []string {
	var lines []string
	for _, raw := range strings.Split(doc.Find("body").Text(), "\n") {
		if line := strings.TrimSpace(raw); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// findTitle prefers headline elements and falls back to the first long
// free-text line that is not a metric or a price.
func findTitle(doc *goquery.Document, lines []string) string {
	title := ""
	doc.Find("h1, h2").EachWithBreak(func(_ int, h *goquery.Selection) bool {
		text := strings.TrimSpace(h.Text())
		if len(text) > 20 && !containsAny(strings.ToUpper(text), titleExclusion) {
			title = text
			return false
		}
		return true
	})
	if title != "" {
		return title
	}

	for _, line := range lines {
		if containsAny(strings.ToUpper(line), titleExclusion) {
			continue
		}
		if priceLineRe.MatchString(line) {
			continue
		}
		if len(line) > 30 && len(line) < 200 {
			return line
		}
	}
	return ""
}

func findCategory(doc *goquery.Document) string {
	category := ""
	doc.Find("[class*='category'], [class*='tag']").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := strings.TrimSpace(s.Text())
		if text != "" && len(text) < 40 {
			category = text
			return false
		}
		return true
	})
	return category
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
