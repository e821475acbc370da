package protocol

import (
	"context"
	"fmt"
	"strings"

	"github.com/gosnmp/gosnmp"
	"github.com/robgonnella/fleetprobe/internal/exception"
)

const sysDescrOID = "1.3.6.1.2.1.1.1.0"

// SNMPConnector implements the Connector interface for snmp v2c. The
// target credential is used as the community string.
type SNMPConnector struct{}

// NewSNMPConnector returns a new instance of SNMPConnector
func NewSNMPConnector() *SNMPConnector {
	return &SNMPConnector{}
}

// Connect prepares the udp socket, snmp has no connection handshake
func (c *SNMPConnector) Connect(ctx context.Context, req Request) (Session, error) {
	community := req.Credential

	if community == "" {
		community = "public"
	}

	params := &gosnmp.GoSNMP{
		Target:    req.Address,
		Port:      uint16(req.Port),
		Transport: "udp",
		Community: community,
		Version:   gosnmp.Version2c,
		Timeout:   req.timeout(),
		Retries:   0,
		Context:   ctx,
	}

	if err := params.Connect(); err != nil {
		return nil, wrapNetError(err)
	}

	return &snmpSession{params: params}, nil
}

type snmpSession struct {
	params *gosnmp.GoSNMP
}

// HealthCheck reads sysDescr. Agents drop requests with a wrong community
// so an authentication failure is reported as a timeout.
func (s *snmpSession) HealthCheck(ctx context.Context) error {
	s.params.Context = ctx

	result, err := s.params.Get([]string{sysDescrOID})

	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "timeout") {
			return fmt.Errorf("%w: %w", exception.ErrTimeout, err)
		}

		return wrapNetError(err)
	}

	return classifySNMPPacket(result)
}

func (s *snmpSession) Close() error {
	if s.params.Conn == nil {
		return nil
	}

	return s.params.Conn.Close()
}

func classifySNMPPacket(packet *gosnmp.SnmpPacket) error {
	if packet == nil {
		return protocolError("empty response")
	}

	switch packet.Error {
	case gosnmp.NoError:
	case gosnmp.AuthorizationError, gosnmp.NoAccess:
		return fmt.Errorf("%w: snmp error %s", exception.ErrAuth, packet.Error.String())
	default:
		return protocolError("snmp error %s", packet.Error.String())
	}

	if len(packet.Variables) == 0 {
		return protocolError("no variables in response")
	}

	return nil
}
