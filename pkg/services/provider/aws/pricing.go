package aws

// instanceTypePrice returns the on-demand hourly rate for an instance
// type. Static table covering the GPU and general-purpose types runctl
// launches for training; in production, use the AWS Price List API.
func instanceTypePrice(instanceType string) float64 {
	prices := map[string]float64{
		// GPU training instances
		"g4dn.xlarge":  0.526,
		"g4dn.2xlarge": 0.752,
		"g5.xlarge":    1.006,
		"g5.2xlarge":   1.212,
		"g5.12xlarge":  5.672,
		"p3.2xlarge":   3.06,
		"p3.8xlarge":   12.24,
		"p4d.24xlarge": 32.77,
		// CPU instances for preprocessing and small jobs
		"t3.micro":   0.0104,
		"t3.small":   0.0208,
		"t3.medium":  0.0416,
		"m5.large":   0.096,
		"m5.xlarge":  0.192,
		"m5.2xlarge": 0.384,
		"c5.2xlarge": 0.34,
		"c5.4xlarge": 0.68,
		"r5.xlarge":  0.252,
	}
	if price, ok := prices[instanceType]; ok {
		return price
	}
	return 0.05 // default fallback price
}
