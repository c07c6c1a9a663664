package dashboard

// DetailsSignals are the client signals read when the details filter changes.
type DetailsSignals struct {
	Status string `json:"status"`
	Search string `json:"search"`
}

// viewSignals switch the page between the summary and details views.
type viewSignals struct {
	View   string `json:"view"`
	Drawer bool   `json:"drawer"`
}
