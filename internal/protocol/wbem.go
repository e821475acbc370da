package protocol

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/xml"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/robgonnella/fleetprobe/internal/exception"
)

// WBEMOptions settings shared by every WBEM connection
type WBEMOptions struct {
	TestClass  string
	VerifyCert bool
}

// DefaultNamespace namespace used when a target has none
const DefaultNamespace = "root/cimv2"

// DefaultTestClass class enumerated by the health operation
const DefaultTestClass = "CIM_ComputerSystem"

// WBEMConnector implements the Connector interface for CIM-XML over http(s)
type WBEMConnector struct {
	opts WBEMOptions
}

// NewWBEMConnector returns a new instance of WBEMConnector
func NewWBEMConnector(opts WBEMOptions) *WBEMConnector {
	if opts.TestClass == "" {
		opts.TestClass = DefaultTestClass
	}

	return &WBEMConnector{opts: opts}
}

// Connect confirms the cimom is accepting connections and returns a
// session bound to the target's namespace
func (c *WBEMConnector) Connect(ctx context.Context, req Request) (Session, error) {
	timeout := req.timeout()

	dialer := net.Dialer{Timeout: timeout}

	conn, err := dialer.DialContext(ctx, "tcp", req.HostPort())

	if err != nil {
		return nil, wrapNetError(err)
	}

	conn.Close()

	scheme := strings.ToLower(req.Scheme)

	if scheme != "http" {
		scheme = "https"
	}

	namespace := req.Namespace

	if namespace == "" {
		namespace = DefaultNamespace
	}

	transport := &http.Transport{
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: !c.opts.VerifyCert, // nolint:gosec
		},
		DisableKeepAlives: true,
	}

	return &wbemSession{
		client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		url:       (&url.URL{Scheme: scheme, Host: req.HostPort(), Path: "/cimom"}).String(),
		principal: req.Principal,
		password:  req.Credential,
		namespace: namespace,
		testClass: c.opts.TestClass,
	}, nil
}

type wbemSession struct {
	client    *http.Client
	url       string
	principal string
	password  string
	namespace string
	testClass string
}

// HealthCheck enumerates the instance names of the test class
func (s *wbemSession) HealthCheck(ctx context.Context) error {
	body, err := enumerateInstanceNamesRequest(s.namespace, s.testClass)

	if err != nil {
		return err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))

	if err != nil {
		return err
	}

	httpReq.Header.Set("Content-Type", `application/xml; charset="utf-8"`)
	httpReq.Header.Set("CIMOperation", "MethodCall")
	httpReq.Header.Set("CIMMethod", "EnumerateInstanceNames")
	httpReq.Header.Set("CIMObject", url.QueryEscape(s.namespace))

	if s.principal != "" || s.password != "" {
		httpReq.SetBasicAuth(s.principal, s.password)
	}

	resp, err := s.client.Do(httpReq)

	if err != nil {
		return wrapNetError(err)
	}

	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: http status %d", exception.ErrAuth, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return protocolError("http status %d %s", resp.StatusCode, resp.Header.Get("CIMError"))
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))

	if err != nil {
		return wrapNetError(err)
	}

	return parseEnumerateResponse(raw)
}

func (s *wbemSession) Close() error {
	s.client.CloseIdleConnections()
	return nil
}

// CIM-XML request
type cimRequest struct {
	XMLName    xml.Name   `xml:"CIM"`
	CIMVersion string     `xml:"CIMVERSION,attr"`
	DTDVersion string     `xml:"DTDVERSION,attr"`
	Message    cimMessage `xml:"MESSAGE"`
}

type cimMessage struct {
	ID              string        `xml:"ID,attr"`
	ProtocolVersion string        `xml:"PROTOCOLVERSION,attr"`
	Call            cimMethodCall `xml:"SIMPLEREQ>IMETHODCALL"`
}

type cimMethodCall struct {
	Name       string         `xml:"NAME,attr"`
	Namespaces []cimNamespace `xml:"LOCALNAMESPACEPATH>NAMESPACE"`
	Param      cimParam       `xml:"IPARAMVALUE"`
}

type cimNamespace struct {
	Name string `xml:"NAME,attr"`
}

type cimParam struct {
	Name      string       `xml:"NAME,attr"`
	ClassName cimClassName `xml:"CLASSNAME"`
}

type cimClassName struct {
	Name string `xml:"NAME,attr"`
}

// CIM-XML response
type cimResponse struct {
	XMLName xml.Name `xml:"CIM"`
	Message *struct {
		Response *struct {
			Name        string    `xml:"NAME,attr"`
			Error       *cimError `xml:"ERROR"`
			ReturnValue *struct {
				InstanceNames []struct {
					ClassName string `xml:"CLASSNAME,attr"`
				} `xml:"INSTANCENAME"`
			} `xml:"IRETURNVALUE"`
		} `xml:"SIMPLERSP>IMETHODRESPONSE"`
	} `xml:"MESSAGE"`
}

type cimError struct {
	Code        int    `xml:"CODE,attr"`
	Description string `xml:"DESCRIPTION,attr"`
}

var cimErrorNames = map[int]string{
	1:  "CIM_ERR_FAILED",
	2:  "CIM_ERR_ACCESS_DENIED",
	3:  "CIM_ERR_INVALID_NAMESPACE",
	4:  "CIM_ERR_INVALID_PARAMETER",
	5:  "CIM_ERR_INVALID_CLASS",
	6:  "CIM_ERR_NOT_FOUND",
	7:  "CIM_ERR_NOT_SUPPORTED",
	17: "CIM_ERR_METHOD_NOT_FOUND",
}

func enumerateInstanceNamesRequest(namespace, className string) ([]byte, error) {
	namespaces := []cimNamespace{}

	for _, part := range strings.Split(strings.Trim(namespace, "/"), "/") {
		namespaces = append(namespaces, cimNamespace{Name: part})
	}

	req := cimRequest{
		CIMVersion: "2.0",
		DTDVersion: "2.0",
		Message: cimMessage{
			ID:              "1001",
			ProtocolVersion: "1.0",
			Call: cimMethodCall{
				Name:       "EnumerateInstanceNames",
				Namespaces: namespaces,
				Param: cimParam{
					Name:      "ClassName",
					ClassName: cimClassName{Name: className},
				},
			},
		},
	}

	body, err := xml.Marshal(req)

	if err != nil {
		return nil, err
	}

	return append([]byte(xml.Header), body...), nil
}

func parseEnumerateResponse(raw []byte) error {
	resp := cimResponse{}

	if err := xml.Unmarshal(raw, &resp); err != nil {
		return protocolError("invalid CIM-XML response: %s", err.Error())
	}

	if resp.Message == nil || resp.Message.Response == nil {
		return protocolError("missing method response")
	}

	if cimErr := resp.Message.Response.Error; cimErr != nil {
		name, ok := cimErrorNames[cimErr.Code]

		if !ok {
			name = fmt.Sprintf("CIM_ERR_%d", cimErr.Code)
		}

		if cimErr.Code == 2 {
			return fmt.Errorf("%w: %s %s", exception.ErrAuth, name, cimErr.Description)
		}

		return protocolError("%s %s", name, cimErr.Description)
	}

	if resp.Message.Response.ReturnValue == nil {
		return protocolError("missing return value")
	}

	return nil
}
