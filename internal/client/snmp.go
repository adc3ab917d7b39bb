package client

import (
	"time"

	"github.com/gosnmp/gosnmp"
	"github.com/tonhe/spyglass/internal/fleet"
)

// System-group OIDs used by the SNMP fallback.
const (
	OIDsysDescr  = "1.3.6.1.2.1.1.1.0"
	OIDsysUpTime = "1.3.6.1.2.1.1.3.0"
	OIDsysName   = "1.3.6.1.2.1.1.5.0"
)

func (c *Client) newSNMP(ip string) *gosnmp.GoSNMP {
	return &gosnmp.GoSNMP{
		Target:    ip,
		Port:      161,
		Version:   gosnmp.Version2c,
		Community: c.cfg.SNMPCommunity,
		Timeout:   agentTimeout(),
		Retries:   1,
	}
}

func agentTimeout() time.Duration { return 3 * time.Second }

// snmpReachable probes the system group to decide whether the fallback
// path can serve this host.
func (c *Client) snmpReachable(ip string) bool {
	g := c.newSNMP(ip)
	if err := g.Connect(); err != nil {
		return false
	}
	defer g.Conn.Close()
	result, err := g.Get([]string{OIDsysName})
	return err == nil && len(result.Variables) > 0
}

// pollSNMP fills the record with the system-group digest the fallback can
// offer instead of plugin metrics.
func (c *Client) pollSNMP() {
	ip, _ := c.host.Addr()
	g := c.newSNMP(ip)
	if err := g.Connect(); err != nil {
		c.host.SetStatus(fleet.StatusOffline)
		return
	}
	defer g.Conn.Close()

	result, err := g.Get([]string{OIDsysName, OIDsysDescr, OIDsysUpTime})
	if err != nil {
		c.host.SetStatus(fleet.StatusOffline)
		return
	}
	for _, v := range result.Variables {
		switch v.Name {
		case "." + OIDsysName, OIDsysName:
			c.host.SetMetric("system.name", pduString(v), "")
		case "." + OIDsysDescr, OIDsysDescr:
			c.host.SetMetric("system.descr", pduString(v), "")
		case "." + OIDsysUpTime, OIDsysUpTime:
			c.host.SetMetric("system.uptime", gosnmp.ToBigInt(v.Value).Int64(), "")
		}
	}
	c.host.SetStatus(fleet.StatusSNMP)
}

func pduString(pdu gosnmp.SnmpPDU) string {
	if b, ok := pdu.Value.([]byte); ok {
		return string(b)
	}
	if s, ok := pdu.Value.(string); ok {
		return s
	}
	return ""
}
