package errcodes

import "git.appkode.ru/pub/go/failure"

const (
	InternalServerError failure.ErrorCode = "InternalServerError"
	TimeoutExceeded     failure.ErrorCode = "TimeoutExceeded"
	Unauthorized        failure.ErrorCode = "Unauthorized"
	Forbidden           failure.ErrorCode = "Forbidden"
	ValidationError     failure.ErrorCode = "ValidationError"
	NotFound            failure.ErrorCode = "NotFound"
	RateLimited         failure.ErrorCode = "RateLimited"
	AlreadyExists       failure.ErrorCode = "AlreadyExists"

	// Сделки и покупки
	DealNotFound          failure.ErrorCode = "DealNotFound"
	InvalidDealID         failure.ErrorCode = "InvalidDealID"
	InvalidQuantity       failure.ErrorCode = "InvalidQuantity"
	DealUnavailable       failure.ErrorCode = "DealUnavailable"
	InsufficientInventory failure.ErrorCode = "InsufficientInventory"
	InsufficientFunds     failure.ErrorCode = "InsufficientFunds"
	BuyerNotFound         failure.ErrorCode = "BuyerNotFound"
	PurchaseNotFound      failure.ErrorCode = "PurchaseNotFound"
	InvalidPurchaseID     failure.ErrorCode = "InvalidPurchaseID"
	InvalidPricing        failure.ErrorCode = "InvalidPricing"
	InvalidGrade          failure.ErrorCode = "InvalidGrade"

	// Логистика
	InvalidLogisticsStatus failure.ErrorCode = "InvalidLogisticsStatus"
	LogisticsConflict      failure.ErrorCode = "LogisticsConflict"

	// Экспорт на внешнюю платформу
	ExportNotFound      failure.ErrorCode = "ExportNotFound"
	InvalidExportID     failure.ErrorCode = "InvalidExportID"
	AlreadyProcessed    failure.ErrorCode = "AlreadyProcessed"
	ImmutableField      failure.ErrorCode = "ImmutableField"
	RejectionReason     failure.ErrorCode = "RejectionReasonRequired"
	UpstreamUnavailable failure.ErrorCode = "UpstreamUnavailable"
)
