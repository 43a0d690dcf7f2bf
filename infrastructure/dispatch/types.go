package dispatch

import "encoding/json"

// Risk flag values computed by the dispatch backend.
const (
	RiskDelayed   = "DELAYED"
	RiskAtRisk    = "AT_RISK"
	RiskDelivered = "DELIVERED"
	RiskOnTime    = "ON_TIME"
)

// Record is one shipping order as reported by the backend. IsDelivered is
// kept raw because the backend emits it as a boolean, a number or a numeric
// string depending on the upstream system that produced the row.
type Record struct {
	SheetNo            string `json:"sheetNo"`
	SupplyType         string `json:"supplyType"`
	ReceiverName       string `json:"receiverName"`
	LastRecRequireTime string `json:"lastRecRequireTime"`
	IsDelivered        any    `json:"isDelivered"`
	HasReceipt         bool   `json:"hasReceipt"`
	RiskFlag           string `json:"riskFlag"`
	CreateTime         string `json:"createTime"`
}

// BoardQuery is the dispatch list request. Optional filters marshal only
// when set.
type BoardQuery struct {
	Page int `json:"page"`
	Size int `json:"size"`

	LastRecRequireTimeStart string `json:"lastRecRequireTimeStart"`
	LastRecRequireTimeEnd   string `json:"lastRecRequireTimeEnd"`

	SheetNo         string `json:"sheetNo,omitempty"`
	RiskFlag        string `json:"riskFlag,omitempty"`
	SupplyType      string `json:"supplyType,omitempty"`
	IsDelivered     *bool  `json:"isDelivered,omitempty"`
	HasReceipt      *bool  `json:"hasReceipt,omitempty"`
	CreateTimeStart string `json:"createTimeStart,omitempty"`
	CreateTimeEnd   string `json:"createTimeEnd,omitempty"`
	FactoryID       string `json:"factoryId,omitempty"`
	FactoryCode     string `json:"factoryCode,omitempty"`
}

// BoardPage is the dispatch list response. Older backend builds use
// items/total instead of content/totalElements; both are accepted.
type BoardPage struct {
	Content          []Record
	TotalElements    int64
	Number           int
	Size             int
	TotalPages       int
	NumberOfElements int
}

func (p *BoardPage) UnmarshalJSON(b []byte) error {
	var aux struct {
		Content          []Record `json:"content"`
		Items            []Record `json:"items"`
		TotalElements    *int64   `json:"totalElements"`
		Total            *int64   `json:"total"`
		Number           int      `json:"number"`
		Size             int      `json:"size"`
		TotalPages       int      `json:"totalPages"`
		NumberOfElements int      `json:"numberOfElements"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	p.Content = aux.Content
	if p.Content == nil {
		p.Content = aux.Items
	}
	switch {
	case aux.TotalElements != nil:
		p.TotalElements = *aux.TotalElements
	case aux.Total != nil:
		p.TotalElements = *aux.Total
	default:
		p.TotalElements = int64(len(p.Content))
	}
	p.Number = aux.Number
	p.Size = aux.Size
	p.TotalPages = aux.TotalPages
	p.NumberOfElements = aux.NumberOfElements
	return nil
}

// FactoryInfo is the factory lookup response. Some deployments wrap the
// record in an extra data object on top of the transport envelope.
type FactoryInfo struct {
	FactoryID        string `json:"factoryId"`
	FactoryCode      string `json:"factoryCode"`
	FactoryName      string `json:"factoryName"`
	FactoryShortName string `json:"factoryShortName"`
}

func (f *FactoryInfo) UnmarshalJSON(b []byte) error {
	type plain FactoryInfo
	var aux struct {
		plain
		Data *plain `json:"data"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	if aux.Data != nil {
		*f = FactoryInfo(*aux.Data)
		return nil
	}
	*f = FactoryInfo(aux.plain)
	return nil
}
