// Package news provides headline fetching (Alpaca marketdata, Google News
// RSS), sentiment scoring, and the news-driven forward tester.
package news

import (
	"context"
	"encoding/xml"
	"html"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"

	"stratbench/internal/util"
)

// Article is a single news article from any source.
type Article struct {
	Symbol   string
	Time     time.Time
	Source   string
	Headline string
	Content  string
}

var httpClient = &http.Client{Timeout: 10 * time.Second}

// FetchAlpacaNews fetches news from the Alpaca marketdata API.
func FetchAlpacaNews(mdc *marketdata.Client, symbol string, start, end time.Time) ([]Article, error) {
	alpacaNews, err := mdc.GetNews(marketdata.GetNewsRequest{
		Symbols:            []string{symbol},
		Start:              start,
		End:                end,
		TotalLimit:         50,
		IncludeContent:     true,
		ExcludeContentless: true,
		Sort:               marketdata.SortAsc,
	})
	if err != nil {
		return nil, err
	}

	articles := make([]Article, 0, len(alpacaNews))
	for _, a := range alpacaNews {
		body := ""
		if a.Content != "" {
			body = StripHTML(a.Content)
		} else if a.Summary != "" {
			body = a.Summary
		}
		articles = append(articles, Article{
			Symbol:   strings.ToUpper(symbol),
			Time:     a.CreatedAt,
			Source:   "alpaca",
			Headline: a.Headline,
			Content:  body,
		})
	}
	return articles, nil
}

type rssResponse struct {
	Channel struct {
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title   string `xml:"title"`
	PubDate string `xml:"pubDate"`
	Desc    string `xml:"description"`
}

// FetchGoogleNews fetches news from Google News RSS.
func FetchGoogleNews(symbol string, start, end time.Time) ([]Article, error) {
	q := url.QueryEscape(symbol + " stock")
	u := "https://news.google.com/rss/search?q=" + q + "&hl=en-US&gl=US&ceid=US:en"

	req, err := http.NewRequest("GET", u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var rss rssResponse
	if err := xml.NewDecoder(resp.Body).Decode(&rss); err != nil {
		return nil, err
	}

	var articles []Article
	for _, item := range rss.Channel.Items {
		t, err := time.Parse(time.RFC1123Z, item.PubDate)
		if err != nil {
			t, err = time.Parse(time.RFC1123, item.PubDate)
			if err != nil {
				continue
			}
		}
		if t.Before(start) || t.After(end) {
			continue
		}
		headline := item.Title
		if idx := strings.LastIndex(headline, " - "); idx > 0 {
			headline = headline[:idx]
		}
		articles = append(articles, Article{
			Symbol:   strings.ToUpper(symbol),
			Time:     t,
			Source:   "google",
			Headline: headline,
			Content:  StripHTML(item.Desc),
		})
	}
	return articles, nil
}

// FetchAll gathers articles for every symbol from all configured sources,
// pacing requests with the limiter. Per-symbol fetch failures are skipped so
// one dead feed does not fail the batch.
func FetchAll(ctx context.Context, mdc *marketdata.Client, symbols []string, start, end time.Time, limiter *util.RateLimiter) ([]Article, error) {
	var all []Article
	for _, symbol := range symbols {
		if err := limiter.Wait(ctx); err != nil {
			return all, err
		}
		if mdc != nil {
			if articles, err := FetchAlpacaNews(mdc, symbol, start, end); err == nil {
				all = append(all, articles...)
			}
		}
		if articles, err := FetchGoogleNews(symbol, start, end); err == nil {
			all = append(all, articles...)
		}
	}
	return all, nil
}

var htmlTagRe = regexp.MustCompile(`<[^>]*>`)

// StripHTML removes HTML tags and normalizes whitespace.
func StripHTML(s string) string {
	s = htmlTagRe.ReplaceAllString(s, " ")
	s = html.UnescapeString(s)
	fields := strings.Fields(s)
	return strings.Join(fields, " ")
}
