package protocol_test

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/robgonnella/fleetprobe/internal/exception"
	"github.com/robgonnella/fleetprobe/internal/protocol"
	"github.com/stretchr/testify/assert"
)

const enumerateResponse = `<?xml version="1.0" encoding="utf-8" ?>
<CIM CIMVERSION="2.0" DTDVERSION="2.0">
<MESSAGE ID="1001" PROTOCOLVERSION="1.0">
<SIMPLERSP>
<IMETHODRESPONSE NAME="EnumerateInstanceNames">
<IRETURNVALUE>
<INSTANCENAME CLASSNAME="CIM_ComputerSystem">
<KEYBINDING NAME="Name"><KEYVALUE VALUETYPE="string">array1</KEYVALUE></KEYBINDING>
</INSTANCENAME>
</IRETURNVALUE>
</IMETHODRESPONSE>
</SIMPLERSP>
</MESSAGE>
</CIM>`

const accessDeniedResponse = `<?xml version="1.0" encoding="utf-8" ?>
<CIM CIMVERSION="2.0" DTDVERSION="2.0">
<MESSAGE ID="1001" PROTOCOLVERSION="1.0">
<SIMPLERSP>
<IMETHODRESPONSE NAME="EnumerateInstanceNames">
<ERROR CODE="2" DESCRIPTION="access denied"/>
</IMETHODRESPONSE>
</SIMPLERSP>
</MESSAGE>
</CIM>`

const invalidNamespaceResponse = `<?xml version="1.0" encoding="utf-8" ?>
<CIM CIMVERSION="2.0" DTDVERSION="2.0">
<MESSAGE ID="1001" PROTOCOLVERSION="1.0">
<SIMPLERSP>
<IMETHODRESPONSE NAME="EnumerateInstanceNames">
<ERROR CODE="3" DESCRIPTION="bad namespace"/>
</IMETHODRESPONSE>
</SIMPLERSP>
</MESSAGE>
</CIM>`

func requestFor(st *testing.T, server *httptest.Server) protocol.Request {
	u, err := url.Parse(server.URL)

	assert.NoError(st, err)

	host, portStr, err := net.SplitHostPort(u.Host)

	assert.NoError(st, err)

	port, err := strconv.Atoi(portStr)

	assert.NoError(st, err)

	return protocol.Request{
		Address:    host,
		Port:       port,
		Scheme:     "http",
		Principal:  "admin",
		Credential: "secret",
		Timeout:    2 * time.Second,
	}
}

func healthCheck(st *testing.T, handler http.HandlerFunc) error {
	server := httptest.NewServer(handler)
	defer server.Close()

	connector := protocol.NewWBEMConnector(protocol.WBEMOptions{})

	session, err := connector.Connect(context.Background(), requestFor(st, server))

	assert.NoError(st, err)

	defer session.Close()

	return session.HealthCheck(context.Background())
}

func TestWBEMConnector(t *testing.T) {
	t.Run("enumerates test class", func(st *testing.T) {
		var gotBody, gotMethod, gotObject, gotUser string

		err := healthCheck(st, func(w http.ResponseWriter, r *http.Request) {
			raw, _ := io.ReadAll(r.Body)
			gotBody = string(raw)
			gotMethod = r.Header.Get("CIMMethod")
			gotObject = r.Header.Get("CIMObject")
			gotUser, _, _ = r.BasicAuth()
			w.Write([]byte(enumerateResponse))
		})

		assert.NoError(st, err)
		assert.Equal(st, "EnumerateInstanceNames", gotMethod)
		assert.Equal(st, url.QueryEscape(protocol.DefaultNamespace), gotObject)
		assert.Equal(st, "admin", gotUser)
		assert.True(st, strings.Contains(gotBody, `<CLASSNAME NAME="CIM_ComputerSystem">`))
		assert.True(st, strings.Contains(gotBody, `<NAMESPACE NAME="root">`))
		assert.True(st, strings.Contains(gotBody, `<NAMESPACE NAME="cimv2">`))
	})

	t.Run("classifies 401 as auth error", func(st *testing.T) {
		err := healthCheck(st, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})

		assert.ErrorIs(st, err, exception.ErrAuth)
	})

	t.Run("classifies access denied as auth error", func(st *testing.T) {
		err := healthCheck(st, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(accessDeniedResponse))
		})

		assert.ErrorIs(st, err, exception.ErrAuth)
	})

	t.Run("classifies CIM error as protocol error", func(st *testing.T) {
		err := healthCheck(st, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(invalidNamespaceResponse))
		})

		assert.ErrorIs(st, err, exception.ErrProtocol)
		assert.Contains(st, err.Error(), "CIM_ERR_INVALID_NAMESPACE")
	})

	t.Run("classifies non xml as protocol error", func(st *testing.T) {
		err := healthCheck(st, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("hello world"))
		})

		assert.ErrorIs(st, err, exception.ErrProtocol)
	})

	t.Run("classifies server error as protocol error", func(st *testing.T) {
		err := healthCheck(st, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})

		assert.ErrorIs(st, err, exception.ErrProtocol)
	})

	t.Run("classifies refused connection", func(st *testing.T) {
		listener, err := net.Listen("tcp", "127.0.0.1:0")
		assert.NoError(st, err)

		port := listener.Addr().(*net.TCPAddr).Port
		listener.Close()

		connector := protocol.NewWBEMConnector(protocol.WBEMOptions{})

		_, err = connector.Connect(context.Background(), protocol.Request{
			Address: "127.0.0.1",
			Port:    port,
			Scheme:  "https",
			Timeout: time.Second,
		})

		assert.ErrorIs(st, err, exception.ErrConnection)
	})
}
