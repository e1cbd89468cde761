package scraper

import (
	"context"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/fr4nk3nst1ner/langsalary/internal/client"
	lserrors "github.com/fr4nk3nst1ner/langsalary/internal/errors"
	"github.com/fr4nk3nst1ner/langsalary/internal/models"
	"github.com/fr4nk3nst1ner/langsalary/internal/telemetry"
)

const superJobAPIURL = "https://api.superjob.ru/2.0/vacancies/"

// superJobPage represents one page of the SuperJob vacancies listing
type superJobPage struct {
	Objects *[]models.SuperJobVacancy `json:"objects"`
	More    bool                      `json:"more"`
	Total   int                       `json:"total"`
}

// SuperJob fetches vacancies from the SuperJob API
type SuperJob struct {
	pager
}

// NewSuperJob requires the application key sent as X-Api-App-Id
func NewSuperJob(apiKey string, opts Options) (*SuperJob, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, lserrors.InvalidInput("superjob api key is required", nil)
	}
	s := &SuperJob{pager: newPager(models.SourceSuperJob, superJobAPIURL, opts)}
	s.headers.Set("X-Api-App-Id", apiKey)
	return s, nil
}

func (s *SuperJob) Source() models.Source {
	return models.SourceSuperJob
}

// Fetch reads pages until one is empty, the source says there is no more, the
// reported total is covered or pageCap pages were read.
// A network or API failure discards everything read for the term.
func (s *SuperJob) Fetch(ctx context.Context, term string, town, pageCap int) (Result, error) {
	ctx, span := tracer.Start(ctx, "scraper.superjob.Fetch")
	defer span.End()
	span.SetAttributes(telemetry.String("term", term), telemetry.Int("town", town))

	if pageCap <= 0 {
		pageCap = DefaultPageCap
	}

	pacer := client.NewPacer(s.pageDelay)
	var res Result

	for page := 0; page < pageCap; page++ {
		params := url.Values{}
		params.Set("keyword", term)
		params.Set("town", itoa(town))
		params.Set("page", itoa(page))
		params.Set("count", itoa(PageSize))

		body, err := s.getPage(ctx, pacer, s.cacheKey(term, town, page), s.baseURL+"?"+params.Encode())
		if err != nil {
			span.RecordError(err)
			return Result{}, err
		}

		var payload superJobPage
		err = s.decodePage(body, &payload)
		if err == nil && payload.Objects == nil {
			err = lserrors.Malformed("page has no objects", nil)
		}
		if malformed(err) {
			s.logger.Warn("malformed page, stopping pagination",
				zap.String("term", term), zap.Int("page", page+1), zap.Error(err))
			break
		}
		if err != nil {
			span.RecordError(err)
			return Result{}, err
		}

		objects := *payload.Objects
		res.Total = payload.Total
		res.Pages = page + 1

		s.logger.Info("loaded vacancies page",
			zap.String("term", term),
			zap.Int("page", page+1),
			zap.Int("pages", pagesFor(payload.Total)),
			zap.Int("count", len(objects)))

		if len(objects) == 0 {
			break
		}
		for _, object := range objects {
			res.Vacancies = append(res.Vacancies, object)
		}
		if !payload.More || page+1 >= pagesFor(payload.Total) {
			break
		}
	}

	span.SetAttributes(telemetry.Int("vacancies.count", len(res.Vacancies)), telemetry.Int("vacancies.found", res.Total))
	return res, nil
}

var _ Fetcher = (*SuperJob)(nil)
