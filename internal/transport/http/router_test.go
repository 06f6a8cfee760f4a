package httptransport

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/kfrye1212/digitalpulse-tld/internal/asset"
	catalogservice "github.com/kfrye1212/digitalpulse-tld/internal/catalog/service"
	catalogstore "github.com/kfrye1212/digitalpulse-tld/internal/catalog/store"
	"github.com/kfrye1212/digitalpulse-tld/internal/fees"
	"github.com/kfrye1212/digitalpulse-tld/internal/fees/bank"
	jwttoken "github.com/kfrye1212/digitalpulse-tld/internal/jwt_token"
	ledgerservice "github.com/kfrye1212/digitalpulse-tld/internal/ledger/service"
	ledgerstore "github.com/kfrye1212/digitalpulse-tld/internal/ledger/store"
	registryservice "github.com/kfrye1212/digitalpulse-tld/internal/registry/service"
	registrystore "github.com/kfrye1212/digitalpulse-tld/internal/registry/store"
	id "github.com/kfrye1212/digitalpulse-tld/pkg/domain"
	"github.com/kfrye1212/digitalpulse-tld/pkg/platform/tx"
	"github.com/kfrye1212/digitalpulse-tld/pkg/testutil"
)

type RouterSuite struct {
	suite.Suite
	server *httptest.Server
	tokens *jwttoken.JWTService
	funds  *bank.InMemory

	authority id.WalletID
	treasury  id.WalletID
	alice     id.WalletID
	bob       id.WalletID
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	registryStore := registrystore.NewInMemory()
	tldStore := catalogstore.NewInMemory()
	domainStore := ledgerstore.NewInMemory()
	s.funds = bank.NewInMemory()
	issuer := asset.NewInMemoryIssuer()
	runner := tx.NewInMemory(registryStore, tldStore, domainStore, s.funds, issuer)
	engine := fees.NewEngine(s.funds)

	s.authority = testutil.Wallet(0xaa)
	s.treasury = testutil.Wallet(0xbb)
	s.alice = testutil.Wallet(0x01)
	s.bob = testutil.Wallet(0x02)
	s.Require().NoError(s.funds.Credit(testutil.Context(), s.alice, 10_000_000_000))
	s.Require().NoError(s.funds.Credit(testutil.Context(), s.bob, 10_000_000_000))

	s.tokens = jwttoken.NewJWTService("test-signing-key", "test-issuer", "test-audience")

	router := NewRouter(Deps{
		Registry:  registryservice.New(registryStore, runner),
		Catalog:   catalogservice.New(tldStore, registryStore, runner),
		Ledger: ledgerservice.New(domainStore, tldStore, registryStore, engine, runner,
			ledgerservice.WithAssetIssuer(issuer)),
		Funds:     s.funds,
		Validator: s.tokens,
	})
	s.server = httptest.NewServer(router)
	s.T().Cleanup(s.server.Close)
}

func (s *RouterSuite) do(method, path string, body any, as id.WalletID) *http.Response {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, s.server.URL+path, &buf)
	s.Require().NoError(err)
	if !as.IsZero() {
		token, err := s.tokens.GenerateAccessToken(as, time.Hour)
		s.Require().NoError(err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.server.Client().Do(req)
	s.Require().NoError(err)
	return resp
}

func (s *RouterSuite) decode(resp *http.Response, into any) {
	defer resp.Body.Close()
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(into))
}

func (s *RouterSuite) initialize() {
	resp := s.do(http.MethodPost, "/v1/service", map[string]string{
		"authority": s.authority.String(),
		"treasury":  s.treasury.String(),
	}, s.authority)
	s.Require().Equal(http.StatusCreated, resp.StatusCode)
	resp.Body.Close()
}

func (s *RouterSuite) createTLD(name string) {
	resp := s.do(http.MethodPost, "/v1/tlds", map[string]any{"name": name, "price": 1_000_000}, s.authority)
	s.Require().Equal(http.StatusCreated, resp.StatusCode)
	resp.Body.Close()
}

func (s *RouterSuite) TestServiceLifecycle() {
	s.Run("initialize creates the singleton", func() {
		s.initialize()
	})

	s.Run("re-initialization conflicts", func() {
		resp := s.do(http.MethodPost, "/v1/service", map[string]string{
			"authority": s.authority.String(),
			"treasury":  s.treasury.String(),
		}, s.authority)
		s.Equal(http.StatusConflict, resp.StatusCode)
		resp.Body.Close()
	})

	s.Run("get returns the configuration", func() {
		resp := s.do(http.MethodGet, "/v1/service", nil, id.WalletID{})
		s.Require().Equal(http.StatusOK, resp.StatusCode)
		var got struct {
			Authority string `json:"authority"`
			Treasury  string `json:"treasury"`
		}
		s.decode(resp, &got)
		s.Equal(s.authority.String(), got.Authority)
		s.Equal(s.treasury.String(), got.Treasury)
	})

	s.Run("authority rotation requires the current authority", func() {
		resp := s.do(http.MethodPut, "/v1/service/authority",
			map[string]string{"wallet": s.alice.String()}, s.bob)
		s.Equal(http.StatusForbidden, resp.StatusCode)
		resp.Body.Close()

		resp = s.do(http.MethodPut, "/v1/service/authority",
			map[string]string{"wallet": s.alice.String()}, s.authority)
		s.Equal(http.StatusOK, resp.StatusCode)
		resp.Body.Close()
	})
}

func (s *RouterSuite) TestMutationsRequireAuth() {
	resp := s.do(http.MethodPost, "/v1/tlds", map[string]any{"name": "com", "price": 1}, id.WalletID{})
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	req, err := http.NewRequest(http.MethodPost, s.server.URL+"/v1/domains", bytes.NewBufferString(`{}`))
	s.Require().NoError(err)
	req.Header.Set("Authorization", "Bearer garbage")
	got, err := s.server.Client().Do(req)
	s.Require().NoError(err)
	s.Equal(http.StatusUnauthorized, got.StatusCode)
	got.Body.Close()
}

func (s *RouterSuite) TestDomainLifecycle() {
	s.initialize()
	s.createTLD("pulse")

	s.Run("register", func() {
		resp := s.do(http.MethodPost, "/v1/domains",
			map[string]string{"name": "hello", "tld": "pulse"}, s.alice)
		s.Require().Equal(http.StatusCreated, resp.StatusCode)
		var got struct {
			FullName string `json:"full_name"`
			Owner    string `json:"owner"`
			AssetRef string `json:"asset_ref"`
		}
		s.decode(resp, &got)
		s.Equal("hello.pulse", got.FullName)
		s.Equal(s.alice.String(), got.Owner)
		s.NotEmpty(got.AssetRef)
	})

	s.Run("duplicate registration conflicts", func() {
		resp := s.do(http.MethodPost, "/v1/domains",
			map[string]string{"name": "hello", "tld": "pulse"}, s.bob)
		s.Equal(http.StatusConflict, resp.StatusCode)
		resp.Body.Close()
	})

	s.Run("resolve is public", func() {
		resp := s.do(http.MethodGet, "/v1/domains/pulse/hello", nil, id.WalletID{})
		s.Require().Equal(http.StatusOK, resp.StatusCode)
		var got struct {
			FullName string `json:"full_name"`
		}
		s.decode(resp, &got)
		s.Equal("hello.pulse", got.FullName)
	})

	s.Run("resolve unknown returns 404", func() {
		resp := s.do(http.MethodGet, "/v1/domains/pulse/ghost", nil, id.WalletID{})
		s.Equal(http.StatusNotFound, resp.StatusCode)
		resp.Body.Close()
	})

	s.Run("renew by non-owner is forbidden", func() {
		resp := s.do(http.MethodPost, "/v1/domains/pulse/hello/renew", nil, s.bob)
		s.Equal(http.StatusForbidden, resp.StatusCode)
		resp.Body.Close()
	})

	s.Run("renew by owner extends expiry", func() {
		resp := s.do(http.MethodPost, "/v1/domains/pulse/hello/renew", nil, s.alice)
		s.Equal(http.StatusOK, resp.StatusCode)
		resp.Body.Close()
	})

	s.Run("transfer moves ownership to the buyer", func() {
		resp := s.do(http.MethodPost, "/v1/domains/pulse/hello/transfer",
			map[string]any{"seller": s.alice.String(), "sale_price": 1_000_000}, s.bob)
		s.Require().Equal(http.StatusOK, resp.StatusCode)
		var got struct {
			Owner string `json:"owner"`
		}
		s.decode(resp, &got)
		s.Equal(s.bob.String(), got.Owner)
	})

	s.Run("list by owner", func() {
		resp := s.do(http.MethodGet, "/v1/domains?owner="+s.bob.String(), nil, id.WalletID{})
		s.Require().Equal(http.StatusOK, resp.StatusCode)
		var got struct {
			Domains []struct {
				FullName string `json:"full_name"`
			} `json:"domains"`
		}
		s.decode(resp, &got)
		s.Require().Len(got.Domains, 1)
		s.Equal("hello.pulse", got.Domains[0].FullName)
	})

	s.Run("balance endpoint reflects fee movement", func() {
		resp := s.do(http.MethodGet, fmt.Sprintf("/v1/wallets/%s/balance", s.treasury.String()), nil, id.WalletID{})
		s.Require().Equal(http.StatusOK, resp.StatusCode)
		var got struct {
			Balance uint64 `json:"balance"`
		}
		s.decode(resp, &got)
		royalty, _ := fees.SplitSale(1_000_000)
		s.Equal(fees.RegistrationFee+fees.RenewalFee+royalty, got.Balance)
	})
}

func (s *RouterSuite) TestValidationErrors() {
	s.initialize()

	s.Run("malformed body", func() {
		req, err := http.NewRequest(http.MethodPost, s.server.URL+"/v1/tlds", bytes.NewBufferString("{not json"))
		s.Require().NoError(err)
		token, err := s.tokens.GenerateAccessToken(s.authority, time.Hour)
		s.Require().NoError(err)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := s.server.Client().Do(req)
		s.Require().NoError(err)
		s.Equal(http.StatusBadRequest, resp.StatusCode)
		resp.Body.Close()
	})

	s.Run("invalid wallet in query", func() {
		resp := s.do(http.MethodGet, "/v1/domains?owner=nothex", nil, id.WalletID{})
		s.Equal(http.StatusBadRequest, resp.StatusCode)
		resp.Body.Close()
	})

	s.Run("health endpoint", func() {
		resp := s.do(http.MethodGet, "/healthz", nil, id.WalletID{})
		s.Equal(http.StatusOK, resp.StatusCode)
		resp.Body.Close()
	})
}
