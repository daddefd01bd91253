package scraper

import (
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const micronsIndexHTML = `
<html><body>
<div class="listing-card">
  <a href="/startup-listings/invoice-tool-for-plumbers"><h3>Invoice tool for plumbers</h3></a>
  <span>Micro-SaaS</span>
  <p>Simple invoicing for trade businesses</p>
  <div>
    <span>$12,400</span>
    <span>Annual Revenue</span>
  </div>
  <div>
    <span>$54,200</span>
    <span>Asking Price</span>
  </div>
</div>
<div class="listing-card">
  <a href="/startup-listings/weekly-ai-digest"><h3>Weekly AI digest</h3></a>
  <span>Newsletter</span>
  <div>
    <span>$8.5k</span>
    <span>Asking Price</span>
  </div>
</div>
<div class="listing-card">
  <span>No link on this card</span>
</div>
</body></html>`

func TestMicronsParseIndex(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(micronsIndexHTML))
	if err != nil {
		t.Fatal(err)
	}

	src := NewMicronsSource(NewClient(1))
	listings := src.parseIndex(doc)

	if len(listings) != 2 {
		t.Fatalf("got %d listings, want 2", len(listings))
	}

	first := listings[0]
	if first.SourceID != "microns" {
		t.Errorf("SourceID = %q", first.SourceID)
	}
	if first.ExternalID != "invoice-tool-for-plumbers" {
		t.Errorf("ExternalID = %q", first.ExternalID)
	}
	if first.URL != "https://www.microns.io/startup-listings/invoice-tool-for-plumbers" {
		t.Errorf("URL = %q", first.URL)
	}
	if first.Title != "Invoice tool for plumbers" {
		t.Errorf("Title = %q", first.Title)
	}
	if first.Category != "Micro-SaaS" {
		t.Errorf("Category = %q", first.Category)
	}
	if first.AskingPrice == nil || *first.AskingPrice != 5_420_000 {
		t.Errorf("AskingPrice = %v, want 5420000", first.AskingPrice)
	}
	if first.AnnualRevenue == nil || *first.AnnualRevenue != 1_240_000 {
		t.Errorf("AnnualRevenue = %v, want 1240000", first.AnnualRevenue)
	}
	if first.ObservedAt.IsZero() {
		t.Error("ObservedAt not set")
	}

	second := listings[1]
	if second.Category != "Newsletter" {
		t.Errorf("Category = %q", second.Category)
	}
	if second.AskingPrice == nil || *second.AskingPrice != 850_000 {
		t.Errorf("AskingPrice = %v, want 850000", second.AskingPrice)
	}
	if second.AnnualRevenue != nil {
		t.Errorf("AnnualRevenue = %v, want nil for undisclosed", *second.AnnualRevenue)
	}
}

const acquireDetailHTML = `
<html><body>
<h1>Profitable B2B analytics platform serving mid-market SaaS teams</h1>
<div class="listing-category">SaaS</div>
<div>
  <p>ASKING PRICE</p>
  <p>$85k</p>
  <p>TTM REVENUE</p>
  <p>$120k</p>
  <p>TTM PROFIT</p>
  <p>$30k</p>
  <p>ANNUAL RECURRING REVENUE</p>
  <p>$96k</p>
  <p>DATE LISTED</p>
  <p>January 11, 2026</p>
</div>
<p>Serving 1,200 customers with a team of 3 employees.</p>
<p>TECH STACK</p>
<p>Go, Postgres, React</p>
</body></html>`

func TestAcquireParseDetail(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(acquireDetailHTML))
	if err != nil {
		t.Fatal(err)
	}

	src := NewAcquireSource(NewClient(1))
	l, ok := src.parseDetail(doc, "https://app.acquire.com/startup/u-1/lst-42")
	if !ok {
		t.Fatal("parseDetail returned not ok")
	}

	if l.ExternalID != "lst-42" {
		t.Errorf("ExternalID = %q", l.ExternalID)
	}
	if l.AskingPrice == nil || *l.AskingPrice != 8_500_000 {
		t.Errorf("AskingPrice = %v, want 8500000", l.AskingPrice)
	}
	if l.AnnualRevenue == nil || *l.AnnualRevenue != 12_000_000 {
		t.Errorf("AnnualRevenue = %v, want 12000000", l.AnnualRevenue)
	}
	if l.AnnualProfit == nil || *l.AnnualProfit != 3_000_000 {
		t.Errorf("AnnualProfit = %v, want 3000000", l.AnnualProfit)
	}
	if l.MRR == nil || *l.MRR != 800_000 {
		t.Errorf("MRR = %v, want 800000", l.MRR)
	}
	if l.CustomerCount == nil || *l.CustomerCount != 1200 {
		t.Errorf("CustomerCount = %v, want 1200", l.CustomerCount)
	}
	wantPosted := time.Date(2026, time.January, 11, 0, 0, 0, 0, time.UTC)
	if l.PostedAt == nil || !l.PostedAt.Equal(wantPosted) {
		t.Errorf("PostedAt = %v, want %v", l.PostedAt, wantPosted)
	}
	if l.TechStack == nil || *l.TechStack != "Go, Postgres, React" {
		t.Errorf("TechStack = %v", l.TechStack)
	}
	if !strings.Contains(l.Title, "B2B analytics platform") {
		t.Errorf("Title = %q", l.Title)
	}
}
