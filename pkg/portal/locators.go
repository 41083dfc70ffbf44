package portal

// Locators is the full table of fallback locators for every logical
// control the workflow touches. The portal ships no stable markup
// contract, so this is configuration, not knowledge: callers may override
// any spec from the config file.
type Locators struct {
	UserField    LocatorSpec `mapstructure:"user_field"`
	PassField    LocatorSpec `mapstructure:"pass_field"`
	LoginSubmit  LocatorSpec `mapstructure:"login_submit"`
	PostLogin    LocatorSpec `mapstructure:"post_login"`
	ModeSwitch   LocatorSpec `mapstructure:"mode_switch"`
	DateFrom     LocatorSpec `mapstructure:"date_from"`
	DateTo       LocatorSpec `mapstructure:"date_to"`
	ZoneSelect   LocatorSpec `mapstructure:"zone_select"`
	RegionSelect LocatorSpec `mapstructure:"region_select"`
	AreaSelect   LocatorSpec `mapstructure:"area_select"`
	DealerSelect LocatorSpec `mapstructure:"dealer_select"`
	TicketStatus LocatorSpec `mapstructure:"ticket_status"`
	TATSelect    LocatorSpec `mapstructure:"tat_select"`
	QuerySubmit  LocatorSpec `mapstructure:"query_submit"`
	Export       LocatorSpec `mapstructure:"export"`
	NoData       LocatorSpec `mapstructure:"no_data"`
	ResultsTable LocatorSpec `mapstructure:"results_table"`
}

func css(q string) Locator   { return Locator{Strategy: ByCSS, Query: q} }
func xpath(q string) Locator { return Locator{Strategy: ByXPath, Query: q} }

// DefaultLocators returns the table observed on the live portal, most
// specific first.
func DefaultLocators() Locators {
	return Locators{
		UserField: LocatorSpec{Name: "username field", Locators: []Locator{
			css(`input[placeholder="Employee Id"]`),
			css(`input[name="userId"]`),
			css(`input#userId`),
			css(`input[type="text"]`),
			css(`input[name="username"]`),
			css(`input#username`),
		}},
		PassField: LocatorSpec{Name: "password field", Locators: []Locator{
			css(`input[placeholder="Password"]`),
			css(`input[name="password"]`),
			css(`input#password`),
			css(`input[type="password"]`),
		}},
		LoginSubmit: LocatorSpec{Name: "login button", Locators: []Locator{
			xpath(`//button[normalize-space(text())='LOG IN']`),
			xpath(`//button[contains(text(), 'LOG IN')]`),
			xpath(`//button[contains(text(), 'Login')]`),
			xpath(`//input[@type='submit']`),
			css(`button[type="submit"]`),
			css(`.login-btn`),
			css(`.btn-login`),
		}},
		PostLogin: LocatorSpec{Name: "post-login heading", Locators: []Locator{
			xpath(`//*[contains(text(), 'Consolidated Report')]`),
			css(`input[placeholder*="From"]`),
			xpath(`//button[text()='Submit']`),
			xpath(`//button[text()='Excel']`),
		}},
		ModeSwitch: LocatorSpec{Name: "mode switch dropdown", Locators: []Locator{
			xpath(`//a[@id='profileDropdown']`),
			css(`a#profileDropdown`),
			css(`a.dropdown-toggle`),
		}},
		DateFrom: LocatorSpec{Name: "date from field", Locators: []Locator{
			css(`input[placeholder*="From"]`),
			css(`input#DateFrom`),
			css(`input[name="dateFrom"]`),
			css(`input[type="date"]`),
			xpath(`//input[contains(@placeholder, 'From') or contains(@name, 'from')]`),
		}},
		DateTo: LocatorSpec{Name: "date to field", Locators: []Locator{
			css(`input[placeholder*="To"]`),
			css(`input#DateTo`),
			css(`input[name="dateTo"]`),
			xpath(`//input[contains(@placeholder, 'To') or contains(@name, 'to')]`),
		}},
		ZoneSelect: LocatorSpec{Name: "zone dropdown", Locators: []Locator{
			css(`select#zone`),
			css(`select[id*="zone"]`),
			css(`select[name*="zone"]`),
			xpath(`//select[.//option[text()='North 1']]`),
		}},
		RegionSelect: LocatorSpec{Name: "region dropdown", Locators: []Locator{
			css(`select#region`),
			css(`select[id*="region"]`),
			css(`select[name*="region"]`),
		}},
		AreaSelect: LocatorSpec{Name: "area dropdown", Locators: []Locator{
			css(`select#area`),
			css(`select[id*="area"]`),
			css(`select[name*="area"]`),
		}},
		DealerSelect: LocatorSpec{Name: "dealer dropdown", Locators: []Locator{
			css(`select#dealer`),
			css(`select[id*="dealer"]`),
			css(`select[name*="dealer"]`),
		}},
		TicketStatus: LocatorSpec{Name: "ticket status multi-select", Locators: []Locator{
			css(`select#ticketStatus`),
			css(`select[name="ticketStatus[]"]`),
			css(`select[id*="status"]`),
		}},
		TATSelect: LocatorSpec{Name: "TAT dropdown", Locators: []Locator{
			css(`select#tat`),
			css(`select[id*="tat"]`),
		}},
		QuerySubmit: LocatorSpec{Name: "submit button", Locators: []Locator{
			xpath(`//button[text()='Submit']`),
			css(`button[type="submit"]`),
			xpath(`//button[contains(text(), 'Submit')]`),
			css(`input[type="submit"]`),
			xpath(`//input[@value='Submit']`),
		}},
		Export: LocatorSpec{Name: "excel export button", Locators: []Locator{
			xpath(`//button[text()='Excel']`),
			css(`button[onclick*="excel"]`),
			xpath(`//button[contains(text(), 'Excel')]`),
			css(`button#exportExcel`),
			css(`button[id*="export"]`),
			// DataTables-style export anchors
			css(`a.buttons-excel`),
			css(`a.exportExcel`),
			css(`a.dt-button.buttons-excel`),
			xpath(`//a[contains(@class, 'buttons-excel')]`),
		}},
		NoData: LocatorSpec{Name: "no data indicator", Locators: []Locator{
			xpath(`//*[contains(text(), 'No Data Found')]`),
			xpath(`//*[contains(text(), 'No records found')]`),
			xpath(`//*[contains(text(), 'No data available')]`),
			xpath(`//*[contains(text(), 'No results')]`),
		}},
		ResultsTable: LocatorSpec{Name: "results table", Locators: []Locator{
			css(`table tbody tr`),
			css(`table.dataTable`),
			css(`table`),
		}},
	}
}
