package value

// DealStatus жизненный цикл лота. Переоткрытие закрытого лота не поддерживается.
type DealStatus string

const (
	DealOpen   DealStatus = "OPEN"
	DealClosed DealStatus = "CLOSED"
)

func (s DealStatus) String() string { return string(s) }

// PricingMode способ определения цены за единицу.
type PricingMode string

const (
	PricingFixed   PricingMode = "FIXED"
	PricingDynamic PricingMode = "DYNAMIC"
)

func (m PricingMode) String() string { return string(m) }

func (m PricingMode) Valid() bool {
	return m == PricingFixed || m == PricingDynamic
}

// LogisticsStatus статус доставки покупки.
type LogisticsStatus string

const (
	LogisticsPending   LogisticsStatus = "PENDING"
	LogisticsConfirmed LogisticsStatus = "CONFIRMED"
	LogisticsShipped   LogisticsStatus = "SHIPPED"
	LogisticsDelivered LogisticsStatus = "DELIVERED"
)

func (s LogisticsStatus) String() string { return string(s) }

func (s LogisticsStatus) Valid() bool {
	switch s {
	case LogisticsPending, LogisticsConfirmed, LogisticsShipped, LogisticsDelivered:
		return true
	default:
		return false
	}
}

// ExportStatus состояние записи в очереди на экспорт.
type ExportStatus string

const (
	ExportPending  ExportStatus = "PENDING"
	ExportApproved ExportStatus = "APPROVED"
	ExportRejected ExportStatus = "REJECTED"
	ExportExported ExportStatus = "EXPORTED"
)

func (s ExportStatus) String() string { return string(s) }

func (s ExportStatus) Valid() bool {
	switch s {
	case ExportPending, ExportApproved, ExportRejected, ExportExported:
		return true
	default:
		return false
	}
}

// Terminal сообщает, что запись больше не меняется.
func (s ExportStatus) Terminal() bool {
	return s == ExportRejected || s == ExportExported
}

// AgreementStatus статус черновика соглашения.
type AgreementStatus string

const AgreementDraft AgreementStatus = "DRAFT"

// ShipmentArrived статус, который уходит на внешнюю платформу при доставке.
const ShipmentArrived = "ARRIVED"
