package routing

// Provider family identifiers. The dispatcher selects an adapter by these.
const (
	ProviderTogether  = "together"
	ProviderFal       = "falai"
	ProviderReplicate = "replicate"
	ProviderModal     = "modal"
)

// Models with a dedicated role in derived actions.
const (
	ModelUpscale = "upscale"
	ModelFill    = "flux-fill"
)

var defaultTable = map[string]entry{
	"flux-schnell": {
		Text:        &target{Provider: ProviderTogether, ModelID: "black-forest-labs/FLUX.1-schnell"},
		Conditioned: &target{Provider: ProviderTogether, ModelID: "black-forest-labs/FLUX.1-redux"},
	},
	"flux-dev": {
		Text:        &target{Provider: ProviderTogether, ModelID: "black-forest-labs/FLUX.1-dev"},
		Conditioned: &target{Provider: ProviderReplicate, ModelID: "black-forest-labs/flux-dev"},
	},
	"flux-pro": {
		Text:        &target{Provider: ProviderFal, ModelID: "fal-ai/flux-pro/v1.1"},
		Conditioned: &target{Provider: ProviderFal, ModelID: "fal-ai/flux-pro/v1.1/redux"},
	},
	"sdxl": {
		Text:        &target{Provider: ProviderReplicate, ModelID: "stability-ai/sdxl"},
		Conditioned: &target{Provider: ProviderReplicate, ModelID: "stability-ai/sdxl"},
	},
	ModelFill: {
		Conditioned: &target{Provider: ProviderFal, ModelID: "fal-ai/flux-pro/v1/fill"},
	},
	ModelUpscale: {
		Conditioned: &target{Provider: ProviderReplicate, ModelID: "philz1337x/clarity-upscaler"},
	},
	"kling-video": {
		Text:        &target{Provider: ProviderFal, ModelID: "fal-ai/kling-video/v1.6/standard/text-to-video"},
		Conditioned: &target{Provider: ProviderFal, ModelID: "fal-ai/kling-video/v1.6/standard/image-to-video"},
	},
	"hunyuan-video": {
		Text:        &target{Provider: ProviderModal, ModelID: "hunyuan-video"},
		Conditioned: &target{Provider: ProviderModal, ModelID: "hunyuan-video-i2v"},
	},
}
