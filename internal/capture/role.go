package capture

import "strings"

// Role identifies one logical member of a capture file set.
type Role int

const (
	RoleRaw Role = iota
	RoleHeader
	RolePreview
	RoleFrameIndex
	RoleSettings
	RoleMetadata
)

// Metadata suffixes. The dataset-level document is recognised by its full
// base name; a bare "_metadata.json" is neither.
const (
	MetadataSuffix        = "_metadata.json"
	DatasetMetadataSuffix = "/_dataset_metadata.json"
	bareMetadataSuffix    = "/_metadata.json"
)

type suffixRule struct {
	suffix string
	role   Role
}

// suffixTable is consulted in order; the first matching suffix wins.
var suffixTable = []suffixRule{
	{suffix: "raw", role: RoleRaw},
	{suffix: "raw.hdr", role: RoleHeader},
	{suffix: "image.jpg", role: RolePreview},
	{suffix: "frameIndex.txt", role: RoleFrameIndex},
	{suffix: "settings.txt", role: RoleSettings},
	{suffix: MetadataSuffix, role: RoleMetadata},
}

// AllRoles lists every role in table order.
func AllRoles() []Role {
	return []Role{RoleRaw, RoleHeader, RolePreview, RoleFrameIndex, RoleSettings, RoleMetadata}
}

// DataRoles lists the roles checked by the admission gate.
func DataRoles() []Role {
	return []Role{RoleRaw, RoleHeader, RolePreview, RoleFrameIndex, RoleSettings}
}

// Classify returns the role for a file name or path by suffix.
func Classify(name string) (Role, bool) {
	for _, rule := range suffixTable {
		if strings.HasSuffix(name, rule.suffix) {
			return rule.role, true
		}
	}
	return 0, false
}

// Suffix returns the recognised suffix for the role.
func (r Role) Suffix() string {
	for _, rule := range suffixTable {
		if rule.role == r {
			return rule.suffix
		}
	}
	return ""
}

func (r Role) String() string {
	switch r {
	case RoleRaw:
		return "raw image"
	case RoleHeader:
		return "raw header"
	case RolePreview:
		return "preview image"
	case RoleFrameIndex:
		return "frame index"
	case RoleSettings:
		return "instrument settings"
	case RoleMetadata:
		return "capture metadata"
	default:
		return "unknown"
	}
}
