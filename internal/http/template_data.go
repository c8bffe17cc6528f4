package httpx

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	domainauth "github.com/target/interview-ui/internal/domain/auth"
)

// User is the signed-in identity shown in the layout.
type User struct {
	Name  string
	Email string
	Role  domainauth.Role
}

// RoleLabel is the display name of the user's role.
func (u User) RoleLabel() string { return u.Role.Label() }

// Pager drives the "pagination" partial.
type Pager struct {
	Page       int
	TotalPages int
	PrevURL    string
	NextURL    string
}

func (p Pager) HasPrev() bool { return p.Page > 1 }
func (p Pager) HasNext() bool { return p.Page < p.TotalPages }

// newPager links neighbouring pages of basePath, keeping the request's
// other query parameters.
func newPager(r *http.Request, basePath string, page, total int) Pager {
	p := Pager{Page: page, TotalPages: total}
	q := r.URL.Query()
	if p.HasPrev() {
		p.PrevURL = buildPageURL(basePath, q, page-1)
	}
	if p.HasNext() {
		p.NextURL = buildPageURL(basePath, q, page+1)
	}
	return p
}

// buildPageURL returns basePath with page set. Empty values and htmx
// bookkeeping parameters are dropped.
func buildPageURL(basePath string, q url.Values, page int) string {
	out := url.Values{}
	for k, vs := range q {
		lk := strings.ToLower(k)
		if strings.HasPrefix(lk, "hx-") || strings.HasPrefix(lk, "hx_") {
			continue
		}
		for _, v := range vs {
			if v != "" {
				out.Add(k, v)
			}
		}
	}
	out.Set("page", strconv.Itoa(page))
	return basePath + "?" + out.Encode()
}

// TemplateDataBuilder assembles the map a page template executes against.
type TemplateDataBuilder struct {
	r    *http.Request
	data map[string]any
}

// NewTemplateData starts from the values every page needs: titles, the CSRF
// token and, when signed in, the user and role flags.
func NewTemplateData(r *http.Request, meta PageMeta) *TemplateDataBuilder {
	return &TemplateDataBuilder{r: r, data: basePageData(r, meta)}
}

func basePageData(r *http.Request, meta PageMeta) map[string]any {
	data := map[string]any{
		"Title":           meta.Title,
		"PageTitle":       meta.PageTitle,
		"CurrentPage":     meta.CurrentPage,
		"CSRFToken":       GetCSRFToken(r),
		"IsAuthenticated": false,
	}
	sess, ok := CurrentSession(r.Context())
	if !ok {
		return data
	}
	c := sess.Claims
	data["IsAuthenticated"] = true
	data["User"] = User{Name: c.DisplayName(), Email: c.Email, Role: c.Role}
	data["IsStudent"] = c.Role == domainauth.RoleStudent
	data["IsHR"] = c.Role == domainauth.RoleHR
	data["IsAdmin"] = c.Role == domainauth.RoleAdmin
	return data
}

// With sets one template value.
func (b *TemplateDataBuilder) With(key string, value any) *TemplateDataBuilder {
	b.data[key] = value
	return b
}

// WithPager exposes a Pager for basePath as .Pager.
func (b *TemplateDataBuilder) WithPager(basePath string, page, total int) *TemplateDataBuilder {
	b.data["Pager"] = newPager(b.r, basePath, page, total)
	return b
}

// WithError sets the banner message shown above the form.
func (b *TemplateDataBuilder) WithError(msg string) *TemplateDataBuilder {
	b.data["Error"] = true
	b.data["ErrorMessage"] = msg
	return b
}

// WithFieldErrors exposes per-field messages as .Errors.
func (b *TemplateDataBuilder) WithFieldErrors(errs map[string]string) *TemplateDataBuilder {
	if len(errs) > 0 {
		b.data["Errors"] = errs
	}
	return b
}

func (b *TemplateDataBuilder) Build() map[string]any { return b.data }
