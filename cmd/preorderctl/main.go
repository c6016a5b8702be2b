package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/draftea/preorder-system/preorder-service/domain"
	"github.com/draftea/preorder-system/shared/models"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.temporal.io/sdk/client"
)

var (
	flagAddress   string
	flagNamespace string
	flagTaskQueue string
)

func main() {
	root := &cobra.Command{
		Use:           "preorderctl",
		Short:         "Operate pre-order sagas from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flagAddress, "address", "localhost:7233", "Temporal server address")
	root.PersistentFlags().StringVar(&flagNamespace, "namespace", "default", "Temporal namespace")
	root.PersistentFlags().StringVar(&flagTaskQueue, "task-queue", domain.DefaultTaskQueue, "task queue for new sagas")

	root.AddCommand(
		newPlaceOrderCmd(),
		newSignalCmd("start-fulfillment", "Signal that the product has been released and fulfillment may begin", domain.SignalStartFulfillment),
		newSignalCmd("cancel", "Cancel the order before fulfillment starts", domain.SignalCancelOrder),
		newSignalCmd("item-picked", "Signal that the delivery partner picked up the item", domain.SignalItemPicked),
		newSignalCmd("confirm-delivery", "Confirm the customer received the item", domain.SignalConfirmDelivery),
		newStatusCmd(),
		newDeadlineCmd(),
		newCompensationLogCmd(),
		newResultCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func dial() (client.Client, error) {
	c, err := client.Dial(client.Options{
		HostPort:  flagAddress,
		Namespace: flagNamespace,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Temporal at %s: %w", flagAddress, err)
	}
	return c, nil
}

func newPlaceOrderCmd() *cobra.Command {
	var (
		email         string
		product       string
		amountCents   int64
		currency      string
		paymentMethod string
		releaseIn     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "place-order",
		Short: "Place a new pre-order and start its saga",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := dial()
			if err != nil {
				return err
			}
			defer c.Close()

			order := domain.PreOrder{
				OrderID:         "ORD-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8],
				CustomerEmail:   email,
				ProductName:     product,
				Amount:          models.NewMoney(amountCents, currency),
				PaymentMethodID: paymentMethod,
				ReleaseDate:     time.Now().Add(releaseIn),
			}
			if err := order.Validate(); err != nil {
				return err
			}

			run, err := c.ExecuteWorkflow(cmd.Context(), client.StartWorkflowOptions{
				ID:        domain.WorkflowID(order.OrderID),
				TaskQueue: flagTaskQueue,
			}, domain.WorkflowName, order)
			if err != nil {
				return fmt.Errorf("failed to start saga: %w", err)
			}

			fmt.Printf("Order placed: %s\n", order.OrderID)
			fmt.Printf("  workflow: %s (run %s)\n", run.GetID(), run.GetRunID())
			fmt.Printf("  release:  %s\n", order.ReleaseDate.Format(time.RFC3339))
			fmt.Printf("  deadline: %s\n", order.Deadline().Format(time.RFC3339))
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "customer@example.com", "customer email")
	cmd.Flags().StringVar(&product, "product", "Collector Edition Console", "product name")
	cmd.Flags().Int64Var(&amountCents, "amount-cents", 88800, "amount to charge, in cents")
	cmd.Flags().StringVar(&currency, "currency", "USD", "currency code")
	cmd.Flags().StringVar(&paymentMethod, "payment-method", "pm_card_visa", "payment method id")
	cmd.Flags().DurationVar(&releaseIn, "release-in", 30*time.Second, "time until the product release date")

	return cmd
}

func newSignalCmd(use, short, signalName string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <order-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := dial()
			if err != nil {
				return err
			}
			defer c.Close()

			orderID := args[0]
			if err := c.SignalWorkflow(cmd.Context(), domain.WorkflowID(orderID), "", signalName, nil); err != nil {
				return fmt.Errorf("failed to signal %s: %w", orderID, err)
			}

			fmt.Printf("Sent %s to %s\n", signalName, orderID)
			return nil
		},
	}
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <order-id>",
		Short: "Show the current phase of a saga",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var status domain.StatusInfo
			if err := queryOrder(cmd.Context(), args[0], domain.QueryGetStatus, &status); err != nil {
				return err
			}
			fmt.Printf("Order %s: %s\n", status.OrderID, status.State)
			return nil
		},
	}
}

func newDeadlineCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "deadline <order-id>",
		Short: "Show the fulfillment deadline and time remaining",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var info domain.DeadlineInfo
			if err := queryOrder(cmd.Context(), args[0], domain.QueryGetDeadlineInfo, &info); err != nil {
				return err
			}

			if info.Deadline == nil {
				fmt.Println("No deadline set yet")
				return nil
			}

			remaining := time.Until(*info.Deadline)
			fmt.Printf("Deadline:  %s\n", info.Deadline.Format(time.RFC3339))
			if remaining > 0 {
				fmt.Printf("Remaining: %s\n", remaining.Round(time.Second))
			} else {
				fmt.Println("Remaining: expired")
			}
			return nil
		},
	}
}

func newCompensationLogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compensation-log <order-id>",
		Short: "Show recorded compensation actions in insertion order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var log []domain.CompensationRecord
			if err := queryOrder(cmd.Context(), args[0], domain.QueryGetCompensationLog, &log); err != nil {
				return err
			}

			if len(log) == 0 {
				fmt.Println("Compensation log is empty")
				return nil
			}
			for i, rec := range log {
				fmt.Printf("%d. %s (%s)\n", i+1, rec.Action, rec.ResourceID)
			}
			return nil
		},
	}
}

func newResultCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "result <order-id>",
		Short: "Wait for a saga to finish and print its outcome",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := dial()
			if err != nil {
				return err
			}
			defer c.Close()

			orderID := args[0]
			run := c.GetWorkflow(cmd.Context(), domain.WorkflowID(orderID), "")

			var result domain.Result
			if err := run.Get(cmd.Context(), &result); err != nil {
				return fmt.Errorf("saga for %s failed: %w", orderID, err)
			}

			out, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}
}

func queryOrder(ctx context.Context, orderID, queryName string, out interface{}) error {
	c, err := dial()
	if err != nil {
		return err
	}
	defer c.Close()

	resp, err := c.QueryWorkflow(ctx, domain.WorkflowID(orderID), "", queryName)
	if err != nil {
		return fmt.Errorf("failed to query %s: %w", orderID, err)
	}
	return resp.Get(out)
}
