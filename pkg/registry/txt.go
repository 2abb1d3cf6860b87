package registry

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/scobi84/chardev-go/pkg/version"
)

// TXT record keys for advertised nodes.
const (
	txtKeyName     = "name"
	txtKeyTag      = "tag"
	txtKeyPath     = "path"
	txtKeyCapacity = "cap"
	txtKeyOpen     = "open"
	txtKeyVersion  = "ver"
)

// NodeInfo describes an advertised device node.
type NodeInfo struct {
	// Name is the device name, also used as the mDNS instance name.
	Name string

	// Tag is the device instance tag.
	Tag int

	// Path is the node path ("/dev/<name>").
	Path string

	// Capacity is the device buffer capacity in bytes.
	Capacity int

	// Open reports whether a session currently holds the device.
	Open bool

	// Port is the gateway port the node is reachable on.
	Port int
}

// EncodeTXT builds the TXT records for a node.
func EncodeTXT(info *NodeInfo) []string {
	return []string{
		txtKeyName + "=" + info.Name,
		txtKeyTag + "=" + strconv.Itoa(info.Tag),
		txtKeyPath + "=" + info.Path,
		txtKeyCapacity + "=" + strconv.Itoa(info.Capacity),
		txtKeyOpen + "=" + strconv.FormatBool(info.Open),
		txtKeyVersion + "=" + version.Current,
	}
}

// DecodeTXT parses node TXT records. Unknown keys are ignored.
func DecodeTXT(records []string) (*NodeInfo, error) {
	info := &NodeInfo{}

	for _, record := range records {
		key, value, found := strings.Cut(record, "=")
		if !found {
			continue
		}

		switch key {
		case txtKeyName:
			info.Name = value
		case txtKeyTag:
			tag, err := strconv.Atoi(value)
			if err != nil {
				return nil, fmt.Errorf("invalid tag %q: %w", value, err)
			}
			info.Tag = tag
		case txtKeyPath:
			info.Path = value
		case txtKeyCapacity:
			capacity, err := strconv.Atoi(value)
			if err != nil {
				return nil, fmt.Errorf("invalid capacity %q: %w", value, err)
			}
			info.Capacity = capacity
		case txtKeyOpen:
			info.Open = value == "true"
		}
	}

	if info.Name == "" {
		return nil, fmt.Errorf("missing %s record", txtKeyName)
	}
	return info, nil
}
