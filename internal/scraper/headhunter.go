package scraper

import (
	"context"
	"net/url"

	"go.uber.org/zap"

	"github.com/fr4nk3nst1ner/langsalary/internal/client"
	lserrors "github.com/fr4nk3nst1ner/langsalary/internal/errors"
	"github.com/fr4nk3nst1ner/langsalary/internal/models"
	"github.com/fr4nk3nst1ner/langsalary/internal/telemetry"
)

const headHunterAPIURL = "https://api.hh.ru/vacancies"

// headHunterPage represents one page of the HeadHunter vacancies listing
type headHunterPage struct {
	Items *[]models.HHVacancy `json:"items"`
	Pages int                 `json:"pages"`
	Found int                 `json:"found"`
	Page  int                 `json:"page"`
}

// HeadHunter fetches vacancies from the HeadHunter API
type HeadHunter struct {
	pager
}

func NewHeadHunter(opts Options) *HeadHunter {
	return &HeadHunter{pager: newPager(models.SourceHeadHunter, headHunterAPIURL, opts)}
}

func (h *HeadHunter) Source() models.Source {
	return models.SourceHeadHunter
}

// Fetch reads pages until one is empty, the reported page count is exhausted or pageCap pages were read.
// A network or API failure discards everything read for the term.
func (h *HeadHunter) Fetch(ctx context.Context, term string, area, pageCap int) (Result, error) {
	ctx, span := tracer.Start(ctx, "scraper.hh.Fetch")
	defer span.End()
	span.SetAttributes(telemetry.String("term", term), telemetry.Int("area", area))

	if pageCap <= 0 {
		pageCap = DefaultPageCap
	}

	pacer := client.NewPacer(h.pageDelay)
	var res Result

	for page := 0; page < pageCap; page++ {
		params := url.Values{}
		params.Set("text", term)
		params.Set("area", itoa(area))
		params.Set("per_page", itoa(PageSize))
		params.Set("page", itoa(page))

		body, err := h.getPage(ctx, pacer, h.cacheKey(term, area, page), h.baseURL+"?"+params.Encode())
		if err != nil {
			span.RecordError(err)
			return Result{}, err
		}

		var payload headHunterPage
		err = h.decodePage(body, &payload)
		if err == nil && payload.Items == nil {
			err = lserrors.Malformed("page has no items", nil)
		}
		if malformed(err) {
			h.logger.Warn("malformed page, stopping pagination",
				zap.String("term", term), zap.Int("page", page+1), zap.Error(err))
			break
		}
		if err != nil {
			span.RecordError(err)
			return Result{}, err
		}

		items := *payload.Items
		res.Total = payload.Found
		res.Pages = page + 1

		h.logger.Info("loaded vacancies page",
			zap.String("term", term),
			zap.Int("page", page+1),
			zap.Int("pages", payload.Pages),
			zap.Int("count", len(items)))

		if len(items) == 0 {
			break
		}
		for _, item := range items {
			res.Vacancies = append(res.Vacancies, item)
		}
		if page+1 >= payload.Pages {
			break
		}
	}

	span.SetAttributes(telemetry.Int("vacancies.count", len(res.Vacancies)), telemetry.Int("vacancies.found", res.Total))
	return res, nil
}

var _ Fetcher = (*HeadHunter)(nil)
