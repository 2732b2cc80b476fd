package observer

import "go.opentelemetry.io/otel/attribute"

// Attribute keys for extraction observability spans and metrics.
var (
	AttrOCRProvider   = attribute.Key("ocr.provider")
	AttrOCRImageBytes = attribute.Key("ocr.image_bytes")
	AttrOCRTextLength = attribute.Key("ocr.text_length")

	AttrFetchRef    = attribute.Key("fetch.ref")
	AttrFetchBytes  = attribute.Key("fetch.bytes")
	AttrFetchStatus = attribute.Key("fetch.http_status")

	AttrErrorKind = attribute.Key("error.kind")
)
