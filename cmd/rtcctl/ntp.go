package main

import (
	"context"
	"encoding/binary"
	"fmt"
	"net"
	"time"
)

const (
	ntpPacketSize = 48
	// ntpEpochOffset is the number of seconds from 1900-01-01 to 1970-01-01.
	ntpEpochOffset = 2208988800
	defaultNTPHost = "pool.ntp.org"
	ntpTimeout     = 5 * time.Second
)

// queryNTP asks an SNTP server for the time. host may carry a port.
func queryNTP(ctx context.Context, host string, timeout time.Duration) (time.Time, error) {
	if _, _, err := net.SplitHostPort(host); err != nil {
		host = net.JoinHostPort(host, "123")
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "udp", host)
	if err != nil {
		return time.Time{}, fmt.Errorf("could not dial %s: %w", host, err)
	}
	defer conn.Close()
	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			return time.Time{}, err
		}
	}

	var b [ntpPacketSize]byte
	b[0] = 0b11100011 // LI, Version, Mode
	b[1] = 0          // Stratum, or type of clock
	b[2] = 6          // Polling Interval
	b[3] = 0xEC       // Peer Clock Precision
	// 8 bytes of zero for Root Delay & Root Dispersion
	b[12] = 49
	b[13] = 0x4E
	b[14] = 49
	b[15] = 52
	if _, err := conn.Write(b[:]); err != nil {
		return time.Time{}, fmt.Errorf("could not send NTP request: %w", err)
	}
	n, err := conn.Read(b[:])
	if err != nil {
		return time.Time{}, fmt.Errorf("could not read NTP reply: %w", err)
	}
	if n != ntpPacketSize {
		return time.Time{}, fmt.Errorf("expected NTP packet size of %d: %d", ntpPacketSize, n)
	}
	return parseNTP(b[:]), nil
}

// parseNTP returns the transmit timestamp of an NTP packet. Timestamps with
// the top bit clear are taken to be in era 1, after February 2036.
func parseNTP(b []byte) time.Time {
	secs := int64(binary.BigEndian.Uint32(b[40:]))
	frac := int64(binary.BigEndian.Uint32(b[44:]))
	if secs&0x80000000 == 0 {
		secs += 1 << 32
	}
	return time.Unix(secs-ntpEpochOffset, frac*int64(time.Second)>>32).UTC()
}

func (a *app) sync(ctx context.Context, args []string) error {
	host := defaultNTPHost
	switch len(args) {
	case 0:
	case 1:
		host = args[0]
	default:
		return errUsage
	}
	t, err := a.queryNTP(ctx, host, ntpTimeout)
	if err != nil {
		return err
	}
	t = t.Round(time.Second)
	if err := a.chip.Set(t); err != nil {
		return fmt.Errorf("could not set the clock: %w", err)
	}
	a.log.WithField("server", host).WithField("time", t).Info("clock set from NTP")
	fmt.Fprintf(a.out, "clock set to %s\n", t.Format(time.RFC3339))
	return nil
}
