package sso

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/mux"

	"github.com/forumbridge/forumbridge/pkg/ghost"
	"github.com/forumbridge/forumbridge/pkg/httputil"
	"github.com/forumbridge/forumbridge/pkg/observability"
	"github.com/forumbridge/forumbridge/pkg/payload"
)

// Method selects which of the two mutually exclusive authentication flows a
// deployment mounts.
type Method string

const (
	// MethodSession authenticates through the visitor's Ghost session cookie.
	MethodSession Method = "session"
	// MethodJWT authenticates through a member JWT presented by a browser
	// client in a two-step handoff.
	MethodJWT Method = "jwt"
)

// ProofScheme is the authorization scheme marker of the JWT flow. The exact
// prefix string, trailing space included, is part of the wire contract with
// the browser client.
const ProofScheme = "GhostMember "

const (
	flowSession = "session"
	flowJWT     = "jwt"
)

// ControllerConfig wires a Controller's collaborators and flow settings.
type ControllerConfig struct {
	Method   Method
	Signer   *payload.Signer
	Ghost    *ghost.Client
	Verifier *ghost.TokenVerifier // required for MethodJWT
	Logger   *observability.Logger
	Metrics  *observability.Metrics

	// NoAuthRedirect is where visitors without a member session are sent.
	// Defaults to the Ghost portal account page.
	NoAuthRedirect string
	// JWTSSOPath is the path, on the Ghost origin, of the page serving the
	// browser client of the JWT flow. Required for MethodJWT.
	JWTSSOPath string
}

// Controller sequences the SSO protocol: transport validation, inbound
// signature verification, member resolution, payload mapping and the signed
// response.
type Controller struct {
	method   Method
	signer   *payload.Signer
	ghost    *ghost.Client
	verifier *ghost.TokenVerifier
	logger   *observability.Logger
	metrics  *observability.Metrics

	loginURL    string
	jwtRedirect string
	corsOrigin  string
}

// NewController creates a flow controller for the configured method.
func NewController(cfg ControllerConfig) (*Controller, error) {
	if cfg.Signer == nil {
		return nil, errors.New("sso: signer is required")
	}
	if cfg.Ghost == nil {
		return nil, errors.New("sso: ghost client is required")
	}

	c := &Controller{
		method:  cfg.Method,
		signer:  cfg.Signer,
		ghost:   cfg.Ghost,
		logger:  cfg.Logger,
		metrics: cfg.Metrics,
	}
	if c.logger == nil {
		c.logger = observability.NewLogger(observability.InfoLevel, nil)
	}

	c.loginURL = cfg.NoAuthRedirect
	if c.loginURL == "" {
		c.loginURL = cfg.Ghost.PortalAccountURL()
	}

	switch cfg.Method {
	case MethodSession:
	case MethodJWT:
		if cfg.Verifier == nil {
			return nil, errors.New("sso: token verifier is required for the jwt method")
		}
		if cfg.JWTSSOPath == "" {
			return nil, errors.New("sso: jwt sso path is required for the jwt method")
		}
		c.verifier = cfg.Verifier
		c.jwtRedirect = cfg.Ghost.ResolvePublic(cfg.JWTSSOPath)

		redirect, err := url.Parse(c.jwtRedirect)
		if err != nil {
			return nil, fmt.Errorf("sso: invalid jwt redirect target: %w", err)
		}
		c.corsOrigin = redirect.Scheme + "://" + redirect.Host
	default:
		return nil, fmt.Errorf("sso: unknown method %q", cfg.Method)
	}

	return c, nil
}

// RegisterRoutes mounts the configured flow on the router.
func (c *Controller) RegisterRoutes(router *mux.Router) {
	switch c.method {
	case MethodJWT:
		router.HandleFunc("/sso", c.JWTAuth).Methods(http.MethodGet)
		router.HandleFunc("/sso", c.Preflight).Methods(http.MethodOptions)
	default:
		router.HandleFunc("/sso", c.SessionAuth).Methods(http.MethodGet)
	}
}

// SessionAuth handles the cookie flow: forward the visitor's Ghost session
// cookie, map the member, and redirect back to the forum with the signed
// payload.
func (c *Controller) SessionAuth(w http.ResponseWriter, r *http.Request) {
	sso, okSSO := httputil.SingleQueryParam(r, "sso")
	sig, okSig := httputil.SingleQueryParam(r, "sig")
	if !okSSO || !okSig {
		c.metrics.ObserveSSO(flowSession, observability.OutcomeBadRequest)
		httputil.WriteBadRequest(w, "SSO and signature are required and must not be arrays")
		return
	}

	cookie := r.Header.Get("Cookie")
	if cookie == "" {
		c.metrics.ObserveSSO(flowSession, observability.OutcomeNotLoggedIn)
		http.Redirect(w, r, c.loginURL, http.StatusFound)
		return
	}

	inbound, err := c.signer.DecodeAndVerify(sso, sig)
	if err != nil {
		c.metrics.ObserveSSO(flowSession, observability.OutcomeBadSignature)
		httputil.WriteBadRequest(w, "Unable to verify signature")
		return
	}

	member, err := c.ghost.MemberFromCookie(r.Context(), cookie)
	if errors.Is(err, ghost.ErrNotLoggedIn) {
		c.metrics.ObserveSSO(flowSession, observability.OutcomeNotLoggedIn)
		http.Redirect(w, r, c.loginURL, http.StatusFound)
		return
	}
	if err != nil {
		c.metrics.ObserveSSO(flowSession, observability.OutcomeUpstreamError)
		observability.FromContext(r.Context()).WithError(err).Error("member session lookup failed")
		httputil.WriteInternalError(w, "Unable to get your member information")
		return
	}

	redirect, err := c.signedReturnURL(member, inbound)
	if err != nil {
		c.metrics.ObserveSSO(flowSession, observability.OutcomeBadRequest)
		httputil.WriteBadRequest(w, "Invalid SSO payload")
		return
	}

	c.metrics.ObserveSSO(flowSession, observability.OutcomeSuccess)
	http.Redirect(w, r, redirect, http.StatusFound)
}

// JWTAuth handles the token flow. The first, proof-less request is redirected
// to the browser client page; the client re-submits with `from_client` and a
// membership JWT, and receives the signed redirect URL as JSON.
func (c *Controller) JWTAuth(w http.ResponseWriter, r *http.Request) {
	c.setCORSHeaders(w)

	sso, okSSO := httputil.SingleQueryParam(r, "sso")
	sig, okSig := httputil.SingleQueryParam(r, "sig")
	fromClient := httputil.HasQueryParam(r, "from_client")

	if !okSSO || !okSig {
		if !fromClient {
			c.metrics.ObserveSSO(flowJWT, observability.OutcomeBadRequest)
			http.Redirect(w, r, c.jwtRedirect+"?error=direct_access", http.StatusFound)
			return
		}

		c.metrics.ObserveSSO(flowJWT, observability.OutcomeBadRequest)
		httputil.WriteBadRequest(w, "Client Error: SSO and signature are required and must not be arrays")
		return
	}

	if !fromClient {
		next, err := url.Parse(c.jwtRedirect)
		if err != nil {
			c.metrics.ObserveSSO(flowJWT, observability.OutcomeBadRequest)
			httputil.WriteInternalError(w, "Invalid redirect target")
			return
		}
		q := next.Query()
		q.Set("sso", sso)
		q.Set("sig", sig)
		next.RawQuery = q.Encode()

		c.metrics.ObserveSSO(flowJWT, observability.OutcomeHandoff)
		http.Redirect(w, r, next.String(), http.StatusFound)
		return
	}

	authorization := r.Header.Get("Authorization")
	if !strings.HasPrefix(authorization, ProofScheme) {
		c.metrics.ObserveSSO(flowJWT, observability.OutcomeInvalidToken)
		httputil.WriteUnauthorized(w, "Client Error: Missing JWT to prove membership")
		return
	}

	token := strings.TrimSpace(strings.TrimPrefix(authorization, ProofScheme))
	email, err := c.verifier.VerifyMemberToken(r.Context(), token)
	if err != nil {
		c.metrics.ObserveSSO(flowJWT, observability.OutcomeInvalidToken)
		httputil.WriteUnauthorized(w, "Client Error: Invalid JWT provided to prove membership\nContext: "+err.Error())
		return
	}

	inbound, err := c.signer.DecodeAndVerify(sso, sig)
	if err != nil {
		c.metrics.ObserveSSO(flowJWT, observability.OutcomeBadSignature)
		httputil.WriteBadRequest(w, "Unable to verify signature")
		return
	}

	member, err := c.ghost.MemberByEmail(r.Context(), email)
	if err != nil && !errors.Is(err, ghost.ErrMemberNotFound) {
		c.metrics.ObserveSSO(flowJWT, observability.OutcomeUpstreamError)
		observability.FromContext(r.Context()).WithError(err).Error("member email lookup failed")
		httputil.WriteInternalError(w, "Unable to get your member information")
		return
	}
	// An exact, case-sensitive match is required: a store that resolved the
	// lookup case-insensitively must not widen the trust in the JWT claim.
	if err != nil || member.Email != email {
		c.metrics.ObserveSSO(flowJWT, observability.OutcomeMemberNotFound)
		httputil.WriteNotFound(w, "Unable to authenticate member")
		return
	}

	redirect, err := c.signedReturnURL(member, inbound)
	if err != nil {
		c.metrics.ObserveSSO(flowJWT, observability.OutcomeBadRequest)
		httputil.WriteBadRequest(w, "Invalid SSO payload")
		return
	}

	c.metrics.ObserveSSO(flowJWT, observability.OutcomeSuccess)
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"redirect": redirect})
}

// Preflight answers the JWT flow's CORS preflight.
func (c *Controller) Preflight(w http.ResponseWriter, r *http.Request) {
	c.setCORSHeaders(w)
	httputil.WriteNoContent(w)
}

// signedReturnURL maps the member to the outbound payload, signs it, and
// attaches it to the forum's return URL.
func (c *Controller) signedReturnURL(member *ghost.Member, inbound url.Values) (string, error) {
	returnURL, err := url.Parse(inbound.Get("return_sso_url"))
	if err != nil {
		return "", fmt.Errorf("invalid return_sso_url: %w", err)
	}
	if !returnURL.IsAbs() {
		return "", errors.New("return_sso_url is not absolute")
	}

	outbound := MapMember(member, inbound.Get("nonce"))
	encoded, sig := c.signer.EncodeAndSign(outbound)

	q := returnURL.Query()
	q.Set("sso", encoded)
	q.Set("sig", sig)
	returnURL.RawQuery = q.Encode()
	return returnURL.String(), nil
}

func (c *Controller) setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", c.corsOrigin)
	w.Header().Set("Access-Control-Allow-Headers", "authorization")
	w.Header().Set("Access-Control-Allow-Methods", "GET")
}
