package inventory

import (
	"strings"

	"github.com/jmoiron/sqlx"
)

// SiteColumns — колонки таблицы sites в порядке полей storage.Site.
const SiteColumns = "id, domain, niche, country, language, dr, traffic, price, dofollow, sponsored, created_at"

var orderBy = map[string]string{
	SortPriceAsc:    "price ASC, id ASC",
	SortPriceDesc:   "price DESC, id ASC",
	SortDRDesc:      "dr DESC, traffic DESC, id ASC",
	SortTrafficDesc: "traffic DESC, id ASC",
	SortNewest:      "created_at DESC, id DESC",
}

// where собирает условия и аргументы. Порядок условий фиксирован — запрос детерминирован.
func (f Filter) where() (string, []any) {
	conds := []string{"active = 1"}
	var args []any

	if f.Query != "" {
		conds = append(conds, "domain LIKE ?")
		args = append(args, "%"+escapeLike(strings.ToLower(f.Query))+"%")
	}
	if len(f.Niches) > 0 {
		conds = append(conds, "niche IN (?)")
		args = append(args, f.Niches)
	}
	if f.Country != "" {
		conds = append(conds, "country = ?")
		args = append(args, f.Country)
	}
	if f.Language != "" {
		conds = append(conds, "language = ?")
		args = append(args, f.Language)
	}
	if f.DRMin > 0 {
		conds = append(conds, "dr >= ?")
		args = append(args, f.DRMin)
	}
	if f.DRMax > 0 {
		conds = append(conds, "dr <= ?")
		args = append(args, f.DRMax)
	}
	if f.TrafficMin > 0 {
		conds = append(conds, "traffic >= ?")
		args = append(args, f.TrafficMin)
	}
	if f.PriceMin > 0 {
		conds = append(conds, "price >= ?")
		args = append(args, f.PriceMin)
	}
	if f.PriceMax > 0 {
		conds = append(conds, "price <= ?")
		args = append(args, f.PriceMax)
	}
	if f.DoFollow != nil {
		conds = append(conds, "dofollow = ?")
		args = append(args, *f.DoFollow)
	}
	return strings.Join(conds, " AND "), args
}

// BuildQuery — SELECT страницы каталога. Слайс ниш раскрывается через sqlx.In.
func BuildQuery(f Filter) (string, []any, error) {
	where, args := f.where()
	order, ok := orderBy[f.Sort]
	if !ok {
		order = orderBy[DefaultSort]
	}
	q := "SELECT " + SiteColumns + " FROM sites WHERE " + where + " ORDER BY " + order + " LIMIT ? OFFSET ?"
	args = append(args, f.PerPage, f.Offset())
	return sqlx.In(q, args...)
}

// BuildCountQuery — COUNT(*) с теми же условиями, для пагинации.
func BuildCountQuery(f Filter) (string, []any, error) {
	where, args := f.where()
	return sqlx.In("SELECT COUNT(*) FROM sites WHERE "+where, args...)
}

// escapeLike экранирует спецсимволы LIKE (в MySQL escape-символ по умолчанию — обратный слэш).
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
