package parser

// KindName names a regex definition or the terminal a top-level alternative
// ends in (§3's Definition symbols and Reference leaves). Unlike the
// teacher's two-level kind/mode-kind id scheme, this scanner has no lexical
// modes, so a KindName maps directly to one terminal symbol's name.
type KindName string

const KindNameNil = KindName("")

// ModeKindID is a regex alternative's position within the root tree,
// doubling as the token number of the terminal that alternative ends in.
// Token number 0 (ModeKindIDNil) is reserved for an ignored-regex sentinel
// (§3, §4.C).
type ModeKindID int

const ModeKindIDNil = ModeKindID(0)
