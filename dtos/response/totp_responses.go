package response

type TOTPSetupResponse struct {
	Secret string `json:"secret"`
	Url    string `json:"url"`
	QrPng  []byte `json:"qr_png"`
}
