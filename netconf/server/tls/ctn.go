package tls

import (
	"crypto/sha256"
	"crypto/x509"
	"encoding/asn1"
	"fmt"
	"sort"
	"strings"

	"github.com/geoffgarside/ber"
)

// SANType discriminates which field of a certificate's Subject
// Alternative Name (or the subject Common Name) a CTNRule matches
// against, per the NETCONF cert-to-name mapping rules.
type SANType string

// The SAN types a CTNRule can match, plus the two non-SAN fallbacks.
const (
	SANRFC822Name SANType = "rfc822Name"
	SANDNSName    SANType = "dNSName"
	SANIPAddress  SANType = "iPAddress"
	SANAny        SANType = "any" // first present of DNS, rfc822, IP, then NETCONF otherName SAN
	SANSpecified  SANType = "specified"
	SubjectCN     SANType = "subject-cn" // fall back to the certificate's subject Common Name
)

var (
	oidSubjectAltName = asn1.ObjectIdentifier{2, 5, 29, 17}
	// oidOtherNameNetconf is the SAN otherName type NETCONF-over-TLS
	// deployments commonly use to carry an explicit NETCONF username
	// directly in the certificate, as a UTF8String otherName value.
	oidOtherNameNetconf = asn1.ObjectIdentifier{1, 3, 6, 1, 5, 5, 7, 8, 5}
)

const tagOtherName = 0 // GeneralName CHOICE context tag for otherName

// CTNRule is one entry of a cert-to-name mapping table: if a presented
// certificate's fingerprint matches Fingerprint (or Fingerprint is
// empty, matching any certificate), the named SANType's value becomes
// the session's NETCONF username, optionally from a specific
// SpecifiedName when SANType is SANSpecified.
type CTNRule struct {
	ID            int
	Fingerprint   string // hex SHA-256 fingerprint, empty matches any cert
	Type          SANType
	SpecifiedName string // used only when Type == SANSpecified
}

// MapCertToName applies rules, in ascending ID order, to cert, returning
// the NETCONF username of the first rule that both matches cert's
// fingerprint and yields a non-empty name.
func MapCertToName(cert *x509.Certificate, rules []CTNRule) (string, error) {
	sorted := append([]CTNRule(nil), rules...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	fp := fingerprint(cert)
	for _, r := range sorted {
		if r.Fingerprint != "" && !strings.EqualFold(r.Fingerprint, fp) {
			continue
		}
		name, err := nameFor(cert, r)
		if err != nil {
			return "", err
		}
		if name != "" {
			return name, nil
		}
	}
	return "", fmt.Errorf("tls ctn: no cert-to-name rule matched certificate %s", cert.Subject.String())
}

func nameFor(cert *x509.Certificate, r CTNRule) (string, error) {
	switch r.Type {
	case SANSpecified:
		return r.SpecifiedName, nil
	case SubjectCN:
		return cert.Subject.CommonName, nil
	case SANRFC822Name:
		if len(cert.EmailAddresses) > 0 {
			return cert.EmailAddresses[0], nil
		}
		return "", nil
	case SANDNSName:
		if len(cert.DNSNames) > 0 {
			return cert.DNSNames[0], nil
		}
		return "", nil
	case SANIPAddress:
		if len(cert.IPAddresses) > 0 {
			return cert.IPAddresses[0].String(), nil
		}
		return "", nil
	case SANAny:
		if len(cert.DNSNames) > 0 {
			return cert.DNSNames[0], nil
		}
		if len(cert.EmailAddresses) > 0 {
			return cert.EmailAddresses[0], nil
		}
		if len(cert.IPAddresses) > 0 {
			return cert.IPAddresses[0].String(), nil
		}
		return otherNameValue(cert)
	default:
		return "", fmt.Errorf("tls ctn: unknown SAN type %q", r.Type)
	}
}

// otherNameValue extracts the UTF8String value of an otherName SAN
// entry matching oidOtherNameNetconf. x509.Certificate parses only the
// well-known SAN types (DNS/email/IP/URI), so an otherName carrying a
// NETCONF username needs a raw decode of the SAN extension's
// GeneralNames sequence. ber.Unmarshal is used rather than
// encoding/asn1 because some CAs issue SAN extensions with BER-style
// padding that the stdlib's strict DER decoder rejects outright.
func otherNameValue(cert *x509.Certificate) (string, error) {
	var sanExt []byte
	for _, ext := range cert.Extensions {
		if ext.Id.Equal(oidSubjectAltName) {
			sanExt = ext.Value
			break
		}
	}
	if sanExt == nil {
		return "", nil
	}

	var names []asn1.RawValue
	if _, err := ber.Unmarshal(sanExt, &names); err != nil {
		// Not every certificate's SAN is a sequence this decoder
		// understands; treat that as "no match" rather than a hard
		// failure, since this is only one of several SAN fallbacks.
		return "", nil //nolint: nilerr
	}

	for _, gn := range names {
		if gn.Class != asn1.ClassContextSpecific || gn.Tag != tagOtherName {
			continue
		}
		var on struct {
			OID   asn1.ObjectIdentifier
			Value asn1.RawValue
		}
		if _, err := ber.Unmarshal(gn.Bytes, &on); err != nil {
			continue
		}
		if on.OID.Equal(oidOtherNameNetconf) {
			return string(on.Value.Bytes), nil
		}
	}
	return "", nil
}

func fingerprint(cert *x509.Certificate) string {
	sum := sha256.Sum256(cert.Raw)
	return fmt.Sprintf("%x", sum)
}
