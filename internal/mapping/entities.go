package mapping

// Products maps product fields to products columns
var Products = NewDictionary(map[string]string{
	"id":                    "id",
	"name":                  "name",
	"description":           "description",
	"longDescription":       "long_description",
	"price":                 "price",
	"image":                 "image_url",
	"category":              "category",
	"stock":                 "stock",
	"thcContent":            "thc_content",
	"cbdContent":            "cbd_content",
	"terpenes":              "terpenes",
	"weight":                "weight",
	"dosage":                "dosage",
	"manufacturer":          "manufacturer",
	"countryOfOrigin":       "country_of_origin",
	"pharmacyProductNumber": "pharmacy_product_number",
	"createdAt":             "created_at",
	"updatedAt":             "updated_at",
})

// Orders maps order fields to orders columns
var Orders = NewDictionary(map[string]string{
	"id":              "id",
	"userId":          "user_id",
	"items":           "items",
	"subtotal":        "subtotal",
	"tax":             "tax",
	"totalAmount":     "total_amount",
	"status":          "status",
	"trackingNumber":  "tracking_number",
	"shippingAddress": "shipping_address",
	"billingAddress":  "billing_address",
	"paymentMethod":   "payment_method",
	"notes":           "notes",
	"createdAt":       "created_at",
	"updatedAt":       "updated_at",
})

// Verifications maps verification fields to pharmacy_verification columns
var Verifications = NewDictionary(map[string]string{
	"id":                "id",
	"userId":            "user_id",
	"pharmacyName":      "pharmacy_name",
	"licenseId":         "license_id",
	"businessDocuments": "business_documents",
	"contactName":       "contact_name",
	"contactEmail":      "contact_email",
	"contactPhone":      "contact_phone",
	"status":            "status",
	"submittedAt":       "submitted_at",
	"reviewedAt":        "reviewed_at",
	"rejectionReason":   "rejection_reason",
	"reviewedBy":        "reviewed_by",
})
