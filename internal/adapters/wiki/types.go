package wiki

// DTOs raw de la price API. Solo se usan dentro de este paquete.
// La conversión a domain entities se hace en mapping.go.
//
// Las claves de "data" son item IDs como string; cualquier campo puede venir
// null cuando el item no tuvo trades en la ventana.

// latestResponse es la respuesta de GET /latest.
type latestResponse struct {
	Data map[string]latestPrice `json:"data"`
}

// latestPrice: high es el último insta-buy, low el último insta-sell.
type latestPrice struct {
	High     *int64 `json:"high"`
	HighTime *int64 `json:"highTime"`
	Low      *int64 `json:"low"`
	LowTime  *int64 `json:"lowTime"`
}

// volumeResponse es la respuesta de GET /24h.
type volumeResponse struct {
	Timestamp int64                  `json:"timestamp"`
	Data      map[string]volumeEntry `json:"data"`
}

type volumeEntry struct {
	AvgHighPrice    *int64 `json:"avgHighPrice"`
	HighPriceVolume *int64 `json:"highPriceVolume"`
	AvgLowPrice     *int64 `json:"avgLowPrice"`
	LowPriceVolume  *int64 `json:"lowPriceVolume"`
}

// mappingEntry es un elemento de GET /mapping.
type mappingEntry struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Limit    *int   `json:"limit"`
	Members  bool   `json:"members"`
	Examine  string `json:"examine"`
	Value    int64  `json:"value"`
	HighAlch *int64 `json:"highalch"`
	LowAlch  *int64 `json:"lowalch"`
	Icon     string `json:"icon"`
}
