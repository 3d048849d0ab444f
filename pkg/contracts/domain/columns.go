// Package domain holds the DataCo supply-chain column vocabulary shared by the
// cleaning, feature and chart stages. Names are the standardized (lowercase,
// underscored) forms produced by the cleaning pipeline.
package domain

// Source columns
const (
	ColOrderDate            = "order_date_dateorders"
	ColShippingDate         = "shipping_date_dateorders"
	ColShippingMode         = "shipping_mode"
	ColDeliveryStatus       = "delivery_status"
	ColLateDeliveryRisk     = "late_delivery_risk"
	ColSales                = "sales"
	ColOrderProfitPerOrder  = "order_profit_per_order"
	ColOrderItemDiscount    = "order_item_discount"
	ColOrderItemQuantity    = "order_item_quantity"
	ColCategoryName         = "category_name"
	ColMarket               = "market"
	ColDaysForShippingReal  = "days_for_shipping_real"
	ColDaysForShipmentSched = "days_for_shipment_scheduled"
	ColCustomerEmail        = "customer_email"
	ColCustomerPassword     = "customer_password"
	ColProductImage         = "product_image"
	ColCustomerFname        = "customer_fname"
	ColCustomerLname        = "customer_lname"
)

// Columns added by the cleaning pipeline
const (
	ColShippingDelayDays = "shipping_delay_days"
	ColOrderMonth        = "order_month"
	ColOrderYear         = "order_year"
	ColOrderDayOfWeek    = "order_day_of_week"
	ColProfitMarginPct   = "profit_margin_pct"
)

// Columns added by feature engineering
const (
	ColOrderValueBucket = "order_value_bucket"
	ColIsHighDiscount   = "is_high_discount"
	ColIsBulkOrder      = "is_bulk_order"
	ColIsWeekendOrder   = "is_weekend_order"
	ColExtremeMargin    = "extreme_margin"
	ColFastShip         = "fast_ship"
	ColNegativeProfit   = "negative_profit"
)

// RedundantColumns are PII or placeholder columns removed during cleaning.
var RedundantColumns = []string{
	ColCustomerEmail,
	ColCustomerPassword,
	ColProductImage,
	ColCustomerFname,
	ColCustomerLname,
}

// DateColumns are parsed into timestamps during cleaning.
var DateColumns = []string{
	ColOrderDate,
	ColShippingDate,
}

// OrderValueBuckets labels the sales quartiles from lowest to highest.
var OrderValueBuckets = []string{"Low", "Medium", "High", "Premium"}
