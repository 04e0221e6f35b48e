package models

// PaperSize identifies the physical paper format of a contract page
type PaperSize string

const (
	PaperA4 PaperSize = "A4"
	PaperA5 PaperSize = "A5"
)

// TextAlignment controls horizontal text flow inside a field
// Values: "L" (start), "C" (center), "R" (end)
type TextAlignment string

const (
	AlignLeft   TextAlignment = "L"
	AlignCenter TextAlignment = "C"
	AlignRight  TextAlignment = "R"
)

// ContractField is a single positioned placeholder on a contract page.
// X and Y are percentages (0-100) anchoring the vertical center of the field;
// Width, Height and FontSize are in pixels, Rotation in degrees.
// Key is the FormData dictionary key and must stay stable once any saved
// contract references it: renaming a key orphans historical form data.
type ContractField struct {
	ID         string        `json:"id"`
	Label      string        `json:"label"`
	Key        string        `json:"key"`
	IsActive   bool          `json:"isActive"`
	X          float64       `json:"x"`
	Y          float64       `json:"y"`
	Width      float64       `json:"width"`
	Height     float64       `json:"height"`
	FontSize   float64       `json:"fontSize"`
	Rotation   float64       `json:"rotation"`
	Alignment  TextAlignment `json:"alignment"`
	IsDropdown bool          `json:"isDropdown,omitempty"`
	Options    []string      `json:"options,omitempty"`
}

// ContractPage is one physical sheet of the template (pageNumber 1..3)
type ContractPage struct {
	PageNumber            int             `json:"pageNumber"`
	BgImage               string          `json:"bgImage,omitempty"`
	PaperSize             PaperSize       `json:"paperSize"`
	Fields                []ContractField `json:"fields"`
	ShowBackgroundInPrint bool            `json:"showBackgroundInPrint"`
}

// ContractTemplate is the declarative description of a contract's pages,
// field positions and styling, independent of any specific client's data.
// It is persisted as a single serialized blob under the settings key
// "contract_template" and must round-trip through JSON without loss.
type ContractTemplate struct {
	ID          string         `json:"id"`
	Pages       []ContractPage `json:"pages"`
	IsLandscape bool           `json:"isLandscape,omitempty"`
}

// MaxPages is the fixed maximum of physical sheets per template
const MaxPages = 3

// TemplateSettingsKey is the constant settings key the template blob is stored under
const TemplateSettingsKey = "contract_template"

// FormData maps field keys to the values entered for one filled contract.
// It is persisted opaque and never validated against the template's field
// set; values for keys no longer defined are retained silently.
type FormData map[string]string

// PageByNumber returns the page with the given number, or nil
func (t *ContractTemplate) PageByNumber(n int) *ContractPage {
	for i := range t.Pages {
		if t.Pages[i].PageNumber == n {
			return &t.Pages[i]
		}
	}
	return nil
}

// FieldByKey returns the field with the given key on this page, or nil
func (p *ContractPage) FieldByKey(key string) *ContractField {
	for i := range p.Fields {
		if p.Fields[i].Key == key {
			return &p.Fields[i]
		}
	}
	return nil
}

// ActiveFields returns the page's active fields in array order
func (p *ContractPage) ActiveFields() []ContractField {
	var active []ContractField
	for _, f := range p.Fields {
		if f.IsActive {
			active = append(active, f)
		}
	}
	return active
}

// DefaultTemplate returns the seed template used when no blob has been saved yet
func DefaultTemplate() *ContractTemplate {
	return &ContractTemplate{
		ID: "default",
		Pages: []ContractPage{
			{
				PageNumber:            1,
				PaperSize:             PaperA4,
				ShowBackgroundInPrint: true,
				Fields: []ContractField{
					{ID: "1", Label: "نام مشتری", Key: "clientName", IsActive: true, X: 35, Y: 30, Width: 150, Height: 30, FontSize: 14, Rotation: 0, Alignment: AlignRight},
					{ID: "2", Label: "شماره پلاک", Key: "plateNumber", IsActive: true, X: 60, Y: 30, Width: 100, Height: 30, FontSize: 14, Rotation: 0, Alignment: AlignCenter},
					{ID: "3", Label: "تاریخ", Key: "date", IsActive: true, X: 78, Y: 30, Width: 100, Height: 30, FontSize: 14, Rotation: 0, Alignment: AlignCenter},
					{ID: "4", Label: "نوع خدمات", Key: "serviceType", IsActive: true, X: 50, Y: 45, Width: 200, Height: 30, FontSize: 14, Rotation: 0, Alignment: AlignCenter, IsDropdown: true, Options: []string{"ردیاب استاندارد", "ردیاب پیشرفته"}},
				},
			},
		},
	}
}
