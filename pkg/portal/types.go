package portal

// Account is one dealer login on the helpline portal, together with the
// filter values its reports are scoped to. Read-only input, supplied by
// the configuration file.
type Account struct {
	ID       string `mapstructure:"id"`
	Password string `mapstructure:"password"`
	Zone     string `mapstructure:"zone"`
	Region   string `mapstructure:"region"`
	Area     string `mapstructure:"area"`
	Dealer   string `mapstructure:"dealer"`
}

// DefaultZone is used when an account entry leaves the zone blank.
const DefaultZone = "North 1"

// SupportMode is one of the portal's two service tiers. The portal keeps
// the active tier as session state, so it has to be switched explicitly
// before querying.
type SupportMode struct {
	Name         string
	Suffix       string
	DropdownText string
}

var (
	EliteSupport    = SupportMode{Name: "Elite Support", Suffix: "E", DropdownText: "Elite"}
	StandardSupport = SupportMode{Name: "Standard Support", Suffix: "S", DropdownText: "Standard"}
)

// Modes returns the support modes in extraction order. Elite runs first so
// that the higher-priority product line wins if time runs out mid-account.
func Modes() []SupportMode {
	return []SupportMode{EliteSupport, StandardSupport}
}

// Artifact is the outcome of one successful (account, mode) extraction.
// Empty means the portal reported no rows for the day; no file exists then.
type Artifact struct {
	Path    string
	Account Account
	Mode    SupportMode
	Empty   bool
}
