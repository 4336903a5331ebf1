package market

const (
	TopicProductViewed     = "market.product.viewed"
	TopicPurchaseCompleted = "market.purchase.completed"
)

// Partition key = product_id, supaya event satu product tetap berurutan.
func PartitionKey(productID string) []byte { return []byte(productID) }
