package auth_test

import (
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/healthhive/registry/access"
	"github.com/healthhive/registry/auth"
)

var _ = Describe("GetSubjectId", func() {
	It("prefers the forwarded subject header", func() {
		req := httptest.NewRequest(http.MethodGet, "/api/patients", nil)
		req.Header.Set(auth.SubjectIdHeaderKey, "USR-001")

		Expect(auth.GetSubjectId(req)).To(Equal("USR-001"))
	})

	It("falls back to the bearer token subject claim", func() {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
			Subject:   "USR-002",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		})
		signed, err := token.SignedString([]byte("secret"))
		Expect(err).ToNot(HaveOccurred())

		req := httptest.NewRequest(http.MethodGet, "/api/patients", nil)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+signed)

		Expect(auth.GetSubjectId(req)).To(Equal("USR-002"))
	})

	It("returns an empty subject for unauthenticated requests", func() {
		req := httptest.NewRequest(http.MethodGet, "/api/patients", nil)
		Expect(auth.GetSubjectId(req)).To(BeEmpty())
	})

	It("returns an empty subject for malformed bearer tokens", func() {
		req := httptest.NewRequest(http.MethodGet, "/api/patients", nil)
		req.Header.Set(echo.HeaderAuthorization, "Bearer not-a-token")
		Expect(auth.GetSubjectId(req)).To(BeEmpty())
	})
})

type stubAuthenticator struct {
	calls  int
	caller access.Caller
	err    error
}

func (s *stubAuthenticator) ValidateAndSetAuthData(subjectId string, ec echo.Context) (bool, error) {
	s.calls++
	if s.err != nil {
		return false, s.err
	}
	auth.SetAuthData(ec, s.caller)
	return true, nil
}

var _ = Describe("CachingAuthenticator", func() {
	var delegate *stubAuthenticator
	var authenticator auth.Authenticator
	var e *echo.Echo

	newContext := func() echo.Context {
		req := httptest.NewRequest(http.MethodGet, "/api/patients", nil)
		return e.NewContext(req, httptest.NewRecorder())
	}

	BeforeEach(func() {
		e = echo.New()
		delegate = &stubAuthenticator{
			caller: access.Caller{
				Id:              "USR-001",
				Role:            access.RoleFieldWorker,
				AssignedRegions: []string{"Poblacion"},
			},
		}

		var err error
		authenticator, err = auth.NewCachingAuthenticator(10, time.Minute, delegate)
		Expect(err).ToNot(HaveOccurred())
	})

	It("serves repeated validations from the cache", func() {
		for i := 0; i < 3; i++ {
			ec := newContext()
			valid, err := authenticator.ValidateAndSetAuthData("USR-001", ec)
			Expect(err).ToNot(HaveOccurred())
			Expect(valid).To(BeTrue())

			caller, err := access.CallerFromContext(ec.Request().Context())
			Expect(err).ToNot(HaveOccurred())
			Expect(caller).To(Equal(delegate.caller))
		}

		Expect(delegate.calls).To(Equal(1))
	})

	It("does not cache failed validations", func() {
		delegate.err = auth.ErrUnauthenticated

		for i := 0; i < 2; i++ {
			_, err := authenticator.ValidateAndSetAuthData("USR-404", newContext())
			Expect(err).To(MatchError(auth.ErrUnauthenticated))
		}

		Expect(delegate.calls).To(Equal(2))
	})
})
