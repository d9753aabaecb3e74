// Package inventory — фильтры каталога площадок и построение SQL-запросов к нему.
package inventory

import (
	"net/url"
	"strconv"
	"strings"

	"linksite/internal/core"

	"github.com/go-playground/validator/v10"
)

// Допустимые сортировки. Пользовательский текст в ORDER BY никогда не попадает.
const (
	SortPriceAsc    = "price_asc"
	SortPriceDesc   = "price_desc"
	SortDRDesc      = "dr_desc"
	SortTrafficDesc = "traffic_desc"
	SortNewest      = "newest"

	DefaultSort    = SortDRDesc
	DefaultPerPage = 24
	MaxPerPage     = 100
)

// Filter — разобранные параметры /inventory?...
// Нулевые DRMax/PriceMax означают «без ограничения».
type Filter struct {
	Query      string   `validate:"max=100"`
	Niches     []string `validate:"max=10,dive,min=1,max=50"`
	Country    string   `validate:"omitempty,len=2,alpha"`
	Language   string   `validate:"omitempty,len=2,alpha"`
	DRMin      int      `validate:"min=0,max=100"`
	DRMax      int      `validate:"min=0,max=100"`
	TrafficMin int      `validate:"min=0"`
	PriceMin   float64  `validate:"min=0"`
	PriceMax   float64  `validate:"min=0"`
	DoFollow   *bool
	Sort       string `validate:"oneof=price_asc price_desc dr_desc traffic_desc newest"`
	Page       int    `validate:"min=1,max=10000"`
	PerPage    int    `validate:"min=1,max=100"`
}

var validate = validator.New()

// fieldNames — имя поля структуры -> имя query-параметра
var fieldNames = map[string]string{
	"Query":      "q",
	"Niches":     "niche",
	"Country":    "country",
	"Language":   "language",
	"DRMin":      "dr_min",
	"DRMax":      "dr_max",
	"TrafficMin": "traffic_min",
	"PriceMin":   "price_min",
	"PriceMax":   "price_max",
	"Sort":       "sort",
	"Page":       "page",
	"PerPage":    "per_page",
}

// ParseFilter разбирает и валидирует query-параметры каталога.
// Ошибки возвращаются как core.Validation с текстом по каждому параметру.
func ParseFilter(v url.Values) (Filter, error) {
	errs := map[string]string{}
	f := Filter{
		Query:    strings.TrimSpace(v.Get("q")),
		Country:  strings.ToUpper(strings.TrimSpace(v.Get("country"))),
		Language: strings.ToLower(strings.TrimSpace(v.Get("language"))),
		Sort:     strings.TrimSpace(v.Get("sort")),
		Page:     1,
		PerPage:  DefaultPerPage,
	}
	if f.Sort == "" {
		f.Sort = DefaultSort
	}

	f.Niches = parseNiches(v["niche"])

	f.DRMin = parseInt(v, "dr_min", 0, errs)
	f.DRMax = parseInt(v, "dr_max", 0, errs)
	f.TrafficMin = parseInt(v, "traffic_min", 0, errs)
	f.PriceMin = parseFloat(v, "price_min", errs)
	f.PriceMax = parseFloat(v, "price_max", errs)
	f.Page = parseInt(v, "page", 1, errs)
	f.PerPage = parseInt(v, "per_page", DefaultPerPage, errs)

	if raw := strings.TrimSpace(v.Get("dofollow")); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			errs["dofollow"] = "ожидается true или false"
		} else {
			f.DoFollow = &b
		}
	}

	if len(errs) == 0 {
		if err := validate.Struct(f); err != nil {
			if verrs, ok := err.(validator.ValidationErrors); ok {
				for _, e := range verrs {
					name := fieldNames[e.StructField()]
					if name == "" {
						name = e.StructField()
					}
					errs[name] = "недопустимое значение (" + e.Tag() + ")"
				}
			} else {
				return f, core.Internal("валидация фильтра", err)
			}
		}
	}

	if f.DRMax > 0 && f.DRMin > f.DRMax {
		errs["dr_min"] = "dr_min больше dr_max"
	}
	if f.PriceMax > 0 && f.PriceMin > f.PriceMax {
		errs["price_min"] = "price_min больше price_max"
	}

	if len(errs) > 0 {
		return f, core.Validation("некорректные параметры фильтра", errs)
	}
	return f, nil
}

// Offset — смещение для LIMIT/OFFSET.
func (f Filter) Offset() int {
	return (f.Page - 1) * f.PerPage
}

// Values — обратное преобразование для ссылок пагинации (стабильный порядок ключей).
func (f Filter) Values() url.Values {
	v := url.Values{}
	if f.Query != "" {
		v.Set("q", f.Query)
	}
	for _, n := range f.Niches {
		v.Add("niche", n)
	}
	if f.Country != "" {
		v.Set("country", f.Country)
	}
	if f.Language != "" {
		v.Set("language", f.Language)
	}
	if f.DRMin > 0 {
		v.Set("dr_min", strconv.Itoa(f.DRMin))
	}
	if f.DRMax > 0 {
		v.Set("dr_max", strconv.Itoa(f.DRMax))
	}
	if f.TrafficMin > 0 {
		v.Set("traffic_min", strconv.Itoa(f.TrafficMin))
	}
	if f.PriceMin > 0 {
		v.Set("price_min", strconv.FormatFloat(f.PriceMin, 'f', -1, 64))
	}
	if f.PriceMax > 0 {
		v.Set("price_max", strconv.FormatFloat(f.PriceMax, 'f', -1, 64))
	}
	if f.DoFollow != nil {
		v.Set("dofollow", strconv.FormatBool(*f.DoFollow))
	}
	if f.Sort != DefaultSort {
		v.Set("sort", f.Sort)
	}
	if f.PerPage != DefaultPerPage {
		v.Set("per_page", strconv.Itoa(f.PerPage))
	}
	if f.Page > 1 {
		v.Set("page", strconv.Itoa(f.Page))
	}
	return v
}

// PageQuery — query-строка для страницы n с теми же фильтрами.
func (f Filter) PageQuery(n int) string {
	f.Page = n
	return f.Values().Encode()
}

// Pages — количество страниц для total записей.
func Pages(total, perPage int) int {
	if total <= 0 || perPage <= 0 {
		return 0
	}
	return (total + perPage - 1) / perPage
}

// parseNiches: ?niche=tech&niche=finance или ?niche=tech,finance; регистр не важен, повторы убираются.
func parseNiches(raw []string) []string {
	var out []string
	seen := map[string]struct{}{}
	for _, item := range raw {
		for _, part := range strings.Split(item, ",") {
			n := strings.ToLower(strings.TrimSpace(part))
			if n == "" {
				continue
			}
			if _, ok := seen[n]; ok {
				continue
			}
			seen[n] = struct{}{}
			out = append(out, n)
		}
	}
	return out
}

func parseInt(v url.Values, key string, def int, errs map[string]string) int {
	raw := strings.TrimSpace(v.Get(key))
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		errs[key] = "ожидается целое число"
		return def
	}
	return n
}

func parseFloat(v url.Values, key string, errs map[string]string) float64 {
	raw := strings.TrimSpace(v.Get(key))
	if raw == "" {
		return 0
	}
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		errs[key] = "ожидается число"
		return 0
	}
	return n
}
